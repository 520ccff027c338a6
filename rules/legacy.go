package rules

// legacyTable is the fixed rule set used before rules became pluggable. It
// shares the built-in check functions, so its findings match a default
// registry's for the same input.
var legacyTable = []Definition{
	{Name: RuleMetadataPresent, DefaultSeverity: SeverityError, Fixable: true, Check: checkMetadataPresent},
	{Name: RuleMetadataUnique, DefaultSeverity: SeverityError, Check: checkMetadataUnique},
	{Name: RuleStaleHash, DefaultSeverity: SeverityError, Fixable: true, Check: checkStaleHash},
	{Name: RuleRequiredFields, DefaultSeverity: SeverityError, Check: checkRequiredFields},
	{Name: RuleDependencyMismatch, DefaultSeverity: SeverityWarn, Fixable: true, Check: checkDependencyMismatch},
	{Name: RuleUntrackedMarkers, DefaultSeverity: SeverityWarn, Check: checkUntrackedMarkers},
	{Name: RuleStaleMetadata, DefaultSeverity: SeverityWarn, Fixable: true, Check: checkStaleMetadata},
	{Name: RuleEmptyHistory, DefaultSeverity: SeverityOff, Check: checkEmptyHistory},
	{Name: RuleUndeclaredExternal, DefaultSeverity: SeverityOff, Check: checkUndeclaredExternal},
}

// LegacyValidate runs the fixed rule table against one file, ignoring any
// registry. Severity overrides from the configuration still apply.
func LegacyValidate(ctx *Context) []Finding {
	return runTable(legacyTable, ctx)
}
