// Package wizard collects the workbench intake interactively: which flow to
// run and the question or cohort query that drives it.
package wizard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Flow selects which workflow branch to run.
type Flow string

const (
	FlowResearch Flow = "research"
	FlowPatient  Flow = "patient"
)

// Intake holds everything collected by the wizard.
type Intake struct {
	Flow     Flow
	Question string
	Query    string
}

const intakeSummaryTemplate = `# trialbench session

flow: {{ .Flow }}
{{ if eq .Flow "research" -}}
question: {{ .Question }}
{{ else -}}
query: {{ .Query }}
{{ end }}`

// RunIntakeWizard collects the intake. Terminal input gets an interactive
// huh form; piped input (tests, scripts) is read line by line.
func RunIntakeWizard(in io.Reader, out io.Writer) (*Intake, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runForm(in, out)
	}
	return runScripted(in, out)
}

func runForm(in io.Reader, out io.Writer) (*Intake, error) {
	var flow string

	flowForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("Ask a research question", string(FlowResearch)),
					huh.NewOption("Look up a patient cohort", string(FlowPatient)),
				).
				Value(&flow),
		),
	).WithInput(in).WithOutput(out)

	if err := flowForm.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	var text string
	prompt := huh.NewInput().Value(&text).Validate(func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("a value is required")
		}
		return nil
	})
	if Flow(flow) == FlowResearch {
		prompt = prompt.
			Title("Research question").
			Placeholder("Does drug X reduce outcome Y in population Z?")
	} else {
		prompt = prompt.
			Title("Patient lookup").
			Placeholder("Patient name or cohort description")
	}

	textForm := huh.NewForm(huh.NewGroup(prompt)).WithInput(in).WithOutput(out)
	if err := textForm.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return buildIntake(flow, text)
}

func runScripted(in io.Reader, out io.Writer) (*Intake, error) {
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "Flow (research/patient): ") //nolint:errcheck
	if !scanner.Scan() {
		return nil, scanErr(scanner)
	}
	flow := strings.TrimSpace(scanner.Text())

	switch Flow(flow) {
	case FlowResearch:
		fmt.Fprint(out, "Research question: ") //nolint:errcheck
	case FlowPatient:
		fmt.Fprint(out, "Patient lookup: ") //nolint:errcheck
	default:
		return nil, fmt.Errorf("invalid flow %q", flow)
	}

	if !scanner.Scan() {
		return nil, scanErr(scanner)
	}
	return buildIntake(flow, scanner.Text())
}

func buildIntake(flow, text string) (*Intake, error) {
	text = strings.TrimSpace(text)
	switch Flow(flow) {
	case FlowResearch:
		if text == "" {
			return nil, fmt.Errorf("research question is required")
		}
		return &Intake{Flow: FlowResearch, Question: text}, nil
	case FlowPatient:
		if text == "" {
			return nil, fmt.Errorf("patient query is required")
		}
		return &Intake{Flow: FlowPatient, Query: text}, nil
	}
	return nil, fmt.Errorf("invalid flow %q", flow)
}

func scanErr(scanner *bufio.Scanner) error {
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return fmt.Errorf("unexpected end of input")
}

// GenerateIntakeSummary renders a short markdown summary of the intake.
func GenerateIntakeSummary(intake *Intake) (string, error) {
	tmpl, err := template.New("intake").Parse(intakeSummaryTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, intake); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
