package selfservice

import (
	"fmt"
	"os"
	"strings"

	"github.com/nullticket/helpdesk/pkg/kb"
	yaml "gopkg.in/yaml.v2"
)

// Rule maps a keyword conjunction to a canned instructional answer.
// A rule matches when every keyword in All appears in the lower-cased
// message and, if Any is non-empty, at least one keyword from Any does too.
// Rules are evaluated in order; the first match wins.
type Rule struct {
	Name     string   `yaml:"name"`
	All      []string `yaml:"all"`
	Any      []string `yaml:"any"`
	Category string   `yaml:"category"`
	Tag      string   `yaml:"tag"`
	Answer   string   `yaml:"answer"`
}

func (r Rule) Matches(lowered string) bool {
	for _, kw := range r.All {
		if !strings.Contains(lowered, kw) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, kw := range r.Any {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// relevantArticle reports whether a knowledge-base article belongs to this
// rule's topic, by category or tag affinity.
func (r Rule) relevantArticle(a kb.Article) bool {
	if r.Category != "" && a.Category == r.Category {
		return true
	}
	return r.Tag != "" && a.HasTag(r.Tag)
}

// LoadRules reads an operator-supplied YAML rule pack, replacing the
// built-in rule set.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule pack: %w", err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rule pack %s: %w", path, err)
	}

	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if len(r.All) == 0 && len(r.Any) == 0 {
			return nil, fmt.Errorf("rule %q: at least one keyword is required", r.Name)
		}
		if strings.TrimSpace(r.Answer) == "" {
			return nil, fmt.Errorf("rule %q: answer is required", r.Name)
		}
	}
	return rules, nil
}

// DefaultRules is the built-in rule set, ordered most-specific first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "password-reset",
			All:      []string{"password"},
			Any:      []string{"reset", "forgot", "change"},
			Category: "password_reset",
			Tag:      "password",
			Answer: `**Password Reset Instructions:**

1. Visit the POWERGRID Self-Service Portal: https://selfservice.powergrid.in
2. Click "Forgot Password" or "Reset Password"
3. Enter your employee ID and registered email
4. Follow the verification process
5. Create a new strong password (minimum 8 characters, include numbers and symbols)

If you don't have access to your registered email, please contact your manager or HR department.

Would you like me to create a ticket for additional assistance?`,
		},
		{
			Name:     "vpn-access",
			All:      []string{"vpn"},
			Any:      []string{"connect", "access", "login"},
			Category: "vpn",
			Tag:      "vpn",
			Answer: `**VPN Access Instructions:**

1. **Download Cisco AnyConnect** from the IT portal or contact IT support
2. **Server Address**: vpn.powergrid.in
3. **Username**: Your employee ID
4. **Authentication**: Use your domain password

**Troubleshooting:**
- Ensure you're connected to internet
- Try different DNS (8.8.8.8, 8.8.4.4)
- Clear browser cache and cookies
- Try incognito/private browsing mode

**Common Issues:**
- Password expired? Reset via self-service portal
- Account locked? Contact IT security team
- New user? Request VPN access through your manager

Need help with VPN setup? I can create a support ticket for you.`,
		},
		{
			Name:     "email-access",
			All:      []string{"email"},
			Any:      []string{"access", "login", "outlook"},
			Category: "email",
			Tag:      "email",
			Answer: `**Email Access Issues:**

**Web Access:**
- URL: https://mail.powergrid.in (OWA)
- Username: employee.id@powergrid.in
- Password: Your domain password

**Outlook Desktop:**
- Server: mail.powergrid.in
- Protocol: Exchange/Office 365

**Mobile Access:**
- Add account in native mail app
- Server: outlook.office365.com
- Use Office 365 authentication

**If you can't access:**
1. Reset password via self-service portal
2. Check if account is active with HR
3. Verify internet connection
4. Try different browser/device

Would you like me to escalate this to IT support?`,
		},
		{
			Name:     "network-connectivity",
			Any:      []string{"internet", "network", "wifi", "connection"},
			Category: "network",
			Tag:      "network",
			Answer: `**Network Connectivity Issues:**

**Immediate Checks:**
1. **Restart your device** (computer/mobile)
2. **Check network cables** (if applicable)
3. **Switch between WiFi and Ethernet**
4. **Forget and reconnect to WiFi**
5. **Try different browser**

**WiFi Troubleshooting:**
- Network Name: POWERGRID-GUEST or POWERGRID-CORP
- Check signal strength
- Move closer to access point
- Avoid interference sources

**Advanced Steps:**
- Flush DNS: Run ` + "`ipconfig /flushdns`" + ` (Windows)
- Reset network: Settings > Network > Reset
- Check firewall/antivirus settings

**If persistent:**
- Contact IT support with your location
- Provide error messages or symptoms
- Note when the issue started

Shall I create a support ticket for network assistance?`,
		},
		{
			Name:     "software-installation",
			Any:      []string{"install", "software", "application", "program"},
			Category: "software",
			Tag:      "software",
			Answer: `**Software Installation Request:**

**Standard Software Available:**
- Microsoft Office Suite
- Antivirus Software
- PDF Readers
- Web Browsers
- Communication Tools

**Request Process:**
1. **Check Software Catalog**: Visit IT portal for available software
2. **Submit Request**: Use the software request form
3. **Approval**: Manager approval may be required
4. **Installation**: IT team will install and configure

**Urgent Requirements:**
- Business-critical software: Contact your manager
- Temporary access: Request through IT helpdesk
- Cloud alternatives: Check if web-based versions exist

**Self-Installation:**
Some software can be installed from: \\software.powergrid.in

Would you like me to help you submit a software installation request?`,
		},
		{
			Name:     "hardware-support",
			Any:      []string{"computer", "laptop", "monitor", "keyboard", "mouse"},
			Category: "hardware",
			Tag:      "hardware",
			Answer: `**Hardware Support:**

**Common Issues & Solutions:**

**Laptop/Computer Problems:**
- **Slow Performance**: Close unnecessary programs, run disk cleanup
- **Blue Screen**: Note error code, restart in safe mode
- **Won't Start**: Check power supply, try different outlet

**Peripherals:**
- **Mouse/Keyboard**: Try different USB port, test on another computer
- **Monitor**: Check cable connections, adjust resolution
- **Printer**: Check toner/ink, clear paper jams

**Hardware Request:**
- **New Equipment**: Submit through IT procurement process
- **Repairs**: Report fault with detailed description
- **Upgrades**: Request through manager approval

**Emergency Hardware:**
- Critical failure affecting work: Call IT emergency line
- Data loss: Stop using device immediately

Need immediate hardware assistance? I can create an urgent support ticket.`,
		},
	}
}
