// Package steps holds the static onboarding checklist.
package steps

// Step is one item in the onboarding checklist. Demo steps are the ones
// wired to live document generation and signing.
type Step struct {
	ID          int    `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Demo        bool   `json:"demo"`
	Completed   bool   `json:"completed"`
}

var catalog = []Step{
	{
		ID:          1,
		Key:         "personal-info",
		Title:       "Personal Information",
		Description: "Collect basic employee details (name, address, contact).",
		Completed:   true,
	},
	{
		ID:          2,
		Key:         "w4-tax",
		Title:       "W-4 Tax Withholding",
		Description: "Federal tax withholding selection (W-4).",
		Completed:   true,
	},
	{
		ID:          3,
		Key:         "i9-eligibility",
		Title:       "I-9 Employment Eligibility",
		Description: "Verify identity and employment authorization (I-9).",
		Completed:   true,
	},
	{
		ID:          4,
		Key:         "direct-deposit",
		Title:       "Direct Deposit Authorization",
		Description: "Set up payroll deposit to employee’s bank account.",
		Completed:   true,
	},
	{
		ID:          5,
		Key:         "emergency-contact",
		Title:       "Emergency Contact",
		Description: "Provide emergency contact information.",
		Completed:   true,
	},
	{
		ID:          6,
		Key:         "benefits-enrollment",
		Title:       "Benefits Enrollment",
		Description: "Enroll in health, dental, vision, and other benefits.",
		Completed:   true,
	},
	{
		ID:          7,
		Key:         "background-check",
		Title:       "Background Check Consent",
		Description: "Consent to background check as required.",
		Completed:   true,
	},
	{
		ID:          8,
		Key:         "confidentiality-agreement",
		Title:       "Confidentiality (NDA) Agreement",
		Description: "Acknowledge and sign the company confidentiality agreement.",
		Demo:        true,
	},
	{
		ID:          9,
		Key:         "handbook-ack",
		Title:       "Employee Handbook Acknowledgement",
		Description: "Confirm receipt and understanding of the employee handbook.",
		Demo:        true,
	},
	{
		ID:          10,
		Key:         "it-security-policy",
		Title:       "IT Security Policy Acknowledgement",
		Description: "Acknowledge IT acceptable use and security policies.",
		Demo:        true,
	},
}

// Catalog returns the checklist in presentation order.
func Catalog() []Step {
	out := make([]Step, len(catalog))
	copy(out, catalog)
	return out
}
