// Package remitter holds the remittance profile model and the form-state
// reducer that drives loading, editing and saving it.
package remitter

// Profile is the bank account a user receives remittances into.
// At most one exists per authenticated user.
type Profile struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name"`
	BranchName    string `json:"branch_name"`
	IFSCCode      string `json:"ifsc_code"`
	SwiftCode     string `json:"swift_code"`
	PANNumber     string `json:"pan_number"`
	Mobile        string `json:"mobile"`
}

// Field identifies one of the profile's fields, in form order.
type Field int

const (
	FieldAccountName Field = iota
	FieldAccountNumber
	FieldBankName
	FieldBranchName
	FieldIFSCCode
	FieldSwiftCode
	FieldPANNumber
	FieldMobile
)

// FieldCount is the number of profile fields.
const FieldCount = 8

// Fields lists every field in form order.
func Fields() []Field {
	return []Field{
		FieldAccountName,
		FieldAccountNumber,
		FieldBankName,
		FieldBranchName,
		FieldIFSCCode,
		FieldSwiftCode,
		FieldPANNumber,
		FieldMobile,
	}
}

type fieldInfo struct {
	key         string
	label       string
	placeholder string
	required    bool
}

var fieldTable = [FieldCount]fieldInfo{
	FieldAccountName:   {"account_name", "Account Holder Name", "Enter account holder name", true},
	FieldAccountNumber: {"account_number", "Account Number", "Enter account number", true},
	FieldBankName:      {"bank_name", "Bank Name", "Enter bank name", true},
	FieldBranchName:    {"branch_name", "Branch Name", "Enter branch name", true},
	FieldIFSCCode:      {"ifsc_code", "IFSC Code", "Enter IFSC code", true},
	FieldSwiftCode:     {"swift_code", "SWIFT Code", "Enter SWIFT code (optional)", false},
	FieldPANNumber:     {"pan_number", "PAN Number", "Enter PAN number (optional)", false},
	FieldMobile:        {"mobile", "Mobile Number", "Enter mobile number", false},
}

func (f Field) valid() bool { return f >= 0 && int(f) < FieldCount }

// Key returns the field's wire name.
func (f Field) Key() string {
	if !f.valid() {
		return ""
	}
	return fieldTable[f].key
}

// Label returns the human-readable field name.
func (f Field) Label() string {
	if !f.valid() {
		return ""
	}
	return fieldTable[f].label
}

// Placeholder returns the hint shown in an empty input.
func (f Field) Placeholder() string {
	if !f.valid() {
		return ""
	}
	return fieldTable[f].placeholder
}

// Required reports whether the field must be non-empty to submit.
func (f Field) Required() bool {
	return f.valid() && fieldTable[f].required
}

func (f Field) String() string { return f.Key() }

// Get returns the value of field f.
func (p Profile) Get(f Field) string {
	switch f {
	case FieldAccountNumber:
		return p.AccountNumber
	case FieldAccountName:
		return p.AccountName
	case FieldBankName:
		return p.BankName
	case FieldBranchName:
		return p.BranchName
	case FieldIFSCCode:
		return p.IFSCCode
	case FieldSwiftCode:
		return p.SwiftCode
	case FieldPANNumber:
		return p.PANNumber
	case FieldMobile:
		return p.Mobile
	}
	return ""
}

// Set returns a copy of p with field f set to v.
func (p Profile) Set(f Field, v string) Profile {
	switch f {
	case FieldAccountNumber:
		p.AccountNumber = v
	case FieldAccountName:
		p.AccountName = v
	case FieldBankName:
		p.BankName = v
	case FieldBranchName:
		p.BranchName = v
	case FieldIFSCCode:
		p.IFSCCode = v
	case FieldSwiftCode:
		p.SwiftCode = v
	case FieldPANNumber:
		p.PANNumber = v
	case FieldMobile:
		p.Mobile = v
	}
	return p
}

// Missing lists the required fields that are empty.
func (p Profile) Missing() []Field {
	var out []Field
	for _, f := range Fields() {
		if f.Required() && p.Get(f) == "" {
			out = append(out, f)
		}
	}
	return out
}
