package main

import (
	"fmt"
	"strings"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/config"
	"github.com/forcemetrics/apexscan/service"
	"github.com/spf13/cobra"
)

var (
	rulesConfigPath string
	rulesFull       bool
)

// staticSeverities summarizes the severity each rule assigns before any
// runtime enrichment
var staticSeverities = map[domain.AntipatternType]string{
	domain.AntipatternExpensiveGlobalDescribe: "CRITICAL inside loops, MAJOR otherwise",
	domain.AntipatternUnboundedSOQLQuery:      "MAJOR",
	domain.AntipatternUnusedSOQLFields:        "MINOR",
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the antipattern rules",
		Long: `List the registered antipattern rules with their static severities and a
preview of the fix guidance attached to findings.

Rules disabled in the configuration file are omitted; pass --config to see
the rule set a specific configuration enables.

Examples:
  apexscan rules
  apexscan rules --full
  apexscan rules --config .apexscan.yaml`,
		RunE: runRules,
	}

	cmd.Flags().StringVarP(&rulesConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVar(&rulesFull, "full", false,
		"Print the complete fix guidance for each rule")

	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if rulesConfigPath != "" {
		cfg, err = config.LoadConfig(rulesConfigPath)
	} else {
		cfg, err = config.LoadConfigWithTarget("", "")
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	registry, err := service.BuildRegistry(cfg)
	if err != nil {
		return err
	}

	modules := registry.AllModules()
	if len(modules) == 0 {
		fmt.Println("No rules enabled.")
		return nil
	}

	for i, module := range modules {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(module.Type())
		if severity, ok := staticSeverities[module.Type()]; ok {
			fmt.Printf("  Static severity: %s\n", severity)
		}
		if module.HasEnricher() {
			fmt.Println("  Runtime: severity recomputed from production telemetry")
		} else {
			fmt.Println("  Runtime: static only")
		}
		if rulesFull {
			fmt.Println("  Fix guidance:")
			fmt.Println(indent(module.FixInstruction(), "    "))
		} else {
			fmt.Printf("  Fix guidance: %s\n", instructionPreview(module.FixInstruction()))
		}
	}

	return nil
}

// instructionPreview returns the first line of the guidance text,
// truncated for one-line display.
func instructionPreview(instruction string) string {
	for _, line := range strings.Split(instruction, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 96 {
			return line[:93] + "..."
		}
		return line
	}
	return ""
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
