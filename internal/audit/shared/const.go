package shared

const (
	MaxLineLength  = 120 // characters, tabs counted as one
	MaxParameters  = 5   // per function signature
	MaxNesting     = 4   // nested control statements within one function
	MinSecretChars = 8   // shorter literals are treated as placeholders
)

// Analyzer names, one per non-reserved category.
const (
	AnalyzerQuality  = "quality"
	AnalyzerSecurity = "security"
	AnalyzerGreen    = "green"
	AnalyzerAICode   = "ai_code"
)
