package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/flow/schema"
)

// validateCommand creates the validate command, which checks a document
// against the schema and for dangling references.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		strict     bool
		showSchema bool
	)

	cmd := &cobra.Command{
		Use:   "validate [document]",
		Short: "Check a flow document against the schema",
		Long: `Check a flow document against the schema.

Schema violations always fail. Dangling references (nodes in unknown phases
or lanes, flows to unknown nodes) are reported as warnings because the layout
drops the affected elements; --strict turns them into a failure.

Use --schema to print the JSON schema itself.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showSchema {
				_, err := io.WriteString(cmd.OutOrStdout(), schema.Source())
				return err
			}
			if len(args) != 1 {
				return fmt.Errorf("validate needs a document")
			}
			return runValidate(args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on dangling references")
	cmd.Flags().BoolVar(&showSchema, "schema", false, "print the document schema and exit")

	return cmd
}

// runValidate checks one file and prints its findings.
func runValidate(path string, strict bool) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	if err := validateSchema(path, data); err != nil {
		printError("%s does not match the schema", path)
		for _, v := range schema.Violations(err) {
			printDetail("%s", v)
		}
		return err
	}

	doc, err := flow.Parse(data)
	if err != nil {
		return err
	}
	report := doc.Check()
	if report.OK() {
		printSuccess("%s is valid", path)
		printStats(len(doc.Nodes), len(doc.Flows), cacheUnused)
		return nil
	}

	for _, issue := range report.Issues {
		printWarning("%s", issue)
	}
	if strict {
		return errs.New(errs.ErrCodeInvalidDocument, "%d issue(s) in %s", len(report.Issues), path)
	}
	printSuccess("%s is valid with %d warning(s)", path, len(report.Issues))
	return nil
}

// validateSchema validates JSON directly and YAML through its decoded value.
func validateSchema(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse %s", path)
		}
		return schema.ValidateValue(v)
	default:
		return schema.Validate(data)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}
