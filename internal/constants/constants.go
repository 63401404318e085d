package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "apexscan"

	// ConfigFileName is the default config file name
	ConfigFileName = ".apexscan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "APEXSCAN"
)

// Apex source file extensions
const (
	ClassFileExt   = ".cls"
	TriggerFileExt = ".trigger"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
	OutputFormatCSV  = "csv"
)
