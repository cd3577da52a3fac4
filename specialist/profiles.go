package specialist

// Profile defines one specialist domain: its identity, the collection it
// retrieves from, the role-defining system instruction sent to the model,
// and how retrieved records are rendered into prompt context.
type Profile struct {
	// Key is the routing key ("windows", "office", "hardware").
	Key string
	// Name is the identity carried in results ("Windows Support").
	Name string
	// Collection is the knowledge collection searched during RETRIEVE.
	Collection string
	// Description summarizes the domain for configuration surfaces.
	Description string
	// SystemPrompt is the fixed role-defining instruction.
	SystemPrompt string
	// ContextFields are the record fields rendered (in order) before the
	// solution in each KB context line.
	ContextFields []string
	// Topic closes the user instruction ("Windows 11", "Microsoft
	// Office", "hardware").
	Topic string
}

// WindowsProfile is the Windows 11 support domain.
func WindowsProfile() Profile {
	return Profile{
		Key:         "windows",
		Name:        "Windows Support",
		Collection:  "windows",
		Description: "Handles Windows 11 related issues",
		SystemPrompt: `You are a specialized Windows 11 IT Support Agent. Your expertise includes:
- Windows 11 installation and configuration
- System troubleshooting and error resolution
- Performance optimization
- Security settings and updates
- Hardware compatibility issues
- Network connectivity problems

Always provide clear, step-by-step solutions. If you cannot resolve an issue based on the knowledge base, recommend contacting the IT Support Service Hotline.`,
		ContextFields: []string{"issue"},
		Topic:         "Windows 11",
	}
}

// OfficeProfile is the Microsoft Office support domain.
func OfficeProfile() Profile {
	return Profile{
		Key:         "office",
		Name:        "Office Support",
		Collection:  "office",
		Description: "Manages Microsoft Office problems",
		SystemPrompt: `You are a specialized Microsoft Office IT Support Agent. Your expertise includes:
- Microsoft Word, Excel, PowerPoint, Outlook issues
- Office 365 and subscription problems
- File compatibility and format issues
- Macro and VBA troubleshooting
- Office installation and activation
- SharePoint and Teams integration

Provide clear, actionable solutions with specific steps when possible.`,
		ContextFields: []string{"application", "issue"},
		Topic:         "Microsoft Office",
	}
}

// HardwareProfile is the hardware support domain.
func HardwareProfile() Profile {
	return Profile{
		Key:         "hardware",
		Name:        "Hardware Support",
		Collection:  "hardware",
		Description: "Addresses hardware-related queries",
		SystemPrompt: `You are a specialized Hardware IT Support Agent. Your expertise includes:
- Desktop and laptop hardware diagnostics
- Component compatibility and replacement
- Performance issues and upgrades
- Peripheral device problems (printers, monitors, etc.)
- Power and thermal issues
- Memory and storage troubleshooting

Always provide safety warnings when appropriate and clear diagnostic steps.`,
		ContextFields: []string{"component", "issue"},
		Topic:         "hardware",
	}
}

// Profiles returns all built-in domain profiles in routing order.
func Profiles() []Profile {
	return []Profile{WindowsProfile(), OfficeProfile(), HardwareProfile()}
}

// ProfileFor looks up a built-in profile by routing key.
func ProfileFor(key string) (Profile, bool) {
	for _, p := range Profiles() {
		if p.Key == key {
			return p, true
		}
	}
	return Profile{}, false
}
