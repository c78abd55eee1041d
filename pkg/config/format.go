package config

// FormatRuleID renders a rule as format asks: its FLOW code, its name, or
// both joined by a slash. A rule without a name always renders by code.
func FormatRuleID(format RuleFormat, ruleID, ruleName string) string {
	switch {
	case ruleName == "", format == RuleFormatID:
		return ruleID
	case format == RuleFormatCombined:
		return ruleID + "/" + ruleName
	}
	return ruleName
}
