package domain

// IntentKind enumerates the pre-retrieval classifications. Only one of them
// (consultant) bypasses generation entirely; category_menu bypasses retrieval
// with a static payload.
type IntentKind string

const (
	IntentNone         IntentKind = "none"
	IntentCategoryMenu IntentKind = "category_menu"
	IntentConsultant   IntentKind = "consultant"
	IntentEligibility  IntentKind = "eligibility"
	IntentAsylum       IntentKind = "asylum"
)

// IntentResult is the tagged variant produced by the intent router. Payload
// fields are populated only for the kinds that use them.
type IntentResult struct {
	Kind          IntentKind
	Answer        string
	Sources       []Source
	ActionButtons []ActionButton
	Categories    []Category
}

func (r IntentResult) Special() bool {
	return r.Kind != IntentNone
}

func (r IntentResult) SpecialType() SpecialType {
	switch r.Kind {
	case IntentCategoryMenu:
		return SpecialCategoryMenu
	case IntentConsultant:
		return SpecialConsultant
	case IntentEligibility:
		return SpecialEligibility
	case IntentAsylum:
		return SpecialAsylum
	default:
		return SpecialNone
	}
}
