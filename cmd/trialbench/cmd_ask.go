package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trialbench/trialbench/internal/catalog"
	"github.com/trialbench/trialbench/internal/models"
	"github.com/trialbench/trialbench/internal/spinner"
	"github.com/trialbench/trialbench/internal/wizard"
	"github.com/trialbench/trialbench/internal/workflow"
)

var (
	heading = color.New(color.FgHiCyan, color.Bold).SprintFunc()
	label   = color.New(color.Bold).SprintFunc()
	good    = color.New(color.FgHiGreen).SprintFunc()
	bad     = color.New(color.FgHiRed).SprintFunc()
)

// demoDrug is a medication offered in the patient flow when no EHR source is
// connected.
type demoDrug struct {
	EntityID    string
	DisplayName string
	RecordCount int
}

var demoDrugs = []demoDrug{
	{"drug-1308216", "Lisinopril", 48210},
	{"drug-1503297", "Metformin", 93400},
	{"drug-1545958", "Atorvastatin", 67890},
	{"drug-974166", "Hydrochlorothiazide", 35120},
}

func newAskCommand() *cobra.Command {
	var (
		question string
		patient  string
		drugName string
		fast     bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Run a workflow session from the terminal",
		Long: `Run a workflow session from the terminal.

With --question the research pipeline runs for that question; with --patient
the cohort flow runs instead. Without either flag an interactive wizard
collects the intake.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			intake, err := resolveIntake(cmd, question, patient)
			if err != nil {
				return err
			}

			scale := 1.0
			if fast {
				scale = 12
			}

			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("loading example catalog: %w", err)
			}
			orch := workflow.New(cat,
				workflow.WithTimeScale(scale),
				workflow.WithPollInterval(200*time.Millisecond),
			)
			defer orch.Close() //nolint:errcheck

			if intake.Flow == wizard.FlowResearch {
				return runResearchSession(cmd, orch, intake.Question)
			}
			return runPatientSession(cmd, orch, intake.Query, drugName)
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Research question to submit")
	cmd.Flags().StringVarP(&patient, "patient", "p", "", "Patient or cohort to look up")
	cmd.Flags().StringVar(&drugName, "drug", "", "Drug to analyze in the patient flow (default: first on the list)")
	cmd.Flags().BoolVar(&fast, "fast", false, "Accelerate the pipeline pacing")
	cmd.MarkFlagsMutuallyExclusive("question", "patient")

	return cmd
}

func resolveIntake(cmd *cobra.Command, question, patient string) (*wizard.Intake, error) {
	switch {
	case question != "":
		return &wizard.Intake{Flow: wizard.FlowResearch, Question: question}, nil
	case patient != "":
		return &wizard.Intake{Flow: wizard.FlowPatient, Query: patient}, nil
	}

	out := cmd.OutOrStdout()
	intake, err := wizard.RunIntakeWizard(cmd.InOrStdin(), out)
	if err != nil {
		return nil, err
	}
	summary, err := wizard.GenerateIntakeSummary(intake)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\n%s\n", summary)
	return intake, nil
}

func runResearchSession(cmd *cobra.Command, orch *workflow.Orchestrator, question string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if err := orch.StartResearch(); err != nil {
		return err
	}
	if err := orch.SubmitQuestion(ctx, question); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s\n\n", label("Question:"), question)

	sp := spinner.Start(cmd.ErrOrStderr(), "Submitting question")
	snap, err := waitForPipeline(ctx, orch, sp)
	sp.Stop()
	if err != nil {
		return err
	}

	printArtifact(out, snap)

	if err := orch.AcknowledgeArtifact(); err != nil {
		return err
	}
	if err := orch.SupplyExampleData(); err != nil {
		return err
	}
	snap = orch.Snapshot()

	fmt.Fprintf(out, "\n%s\n\n", heading("Trial results"))
	if snap.Results != nil && snap.Results.ExampleID != "" {
		if ex := orch.Catalog().Get(snap.Results.ExampleID); ex != nil {
			printExampleSummary(out, ex)
		}
	}
	return nil
}

// waitForPipeline watches the session until the pipeline produces an
// artifact or fails, updating the spinner with the active agent step.
func waitForPipeline(ctx context.Context, orch *workflow.Orchestrator, sp *spinner.Spinner) (workflow.Snapshot, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return workflow.Snapshot{}, ctx.Err()
		case <-ticker.C:
		}

		snap := orch.Snapshot()
		switch snap.Phase {
		case models.PhaseResearchCodeReady:
			return snap, nil
		case models.PhaseResearchPrompt:
			if snap.Notice != nil {
				return snap, &PipelineFailureError{Message: snap.Notice.Message}
			}
		case models.PhaseResearchProcessing:
			if snap.Notice != nil && snap.Notice.Kind == workflow.NoticeResultsUnavailable {
				return snap, &PipelineFailureError{Message: snap.Notice.Message}
			}
			for _, step := range snap.Steps {
				if step.Status == models.StepActive {
					msg := step.Label
					if step.Message != "" {
						msg += ": " + step.Message
					}
					sp.SetMessage(msg)
					break
				}
			}
		}
	}
}

func printArtifact(out io.Writer, snap workflow.Snapshot) {
	fmt.Fprintf(out, "%s\n\n", heading("Generated trial: "+snap.Artifact.TrialName))
	if snap.Artifact.CausalQuestion != "" {
		fmt.Fprintf(out, "%s %s\n\n", label("Causal question:"), snap.Artifact.CausalQuestion)
	}
	if snap.Artifact.DesignSpec != "" {
		fmt.Fprintf(out, "%s\n%s\n", heading("Protocol"), snap.Artifact.DesignSpec)
	}
	if snap.Artifact.Code != "" {
		fmt.Fprintf(out, "%s\n%s\n", heading("Analysis code"), snap.Artifact.Code)
	}
}

func runPatientSession(cmd *cobra.Command, orch *workflow.Orchestrator, query, drugName string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if err := orch.StartPatientFlow(); err != nil {
		return err
	}
	if err := orch.SearchPatient(query); err != nil {
		return err
	}

	sp := spinner.Start(cmd.ErrOrStderr(), "Loading patient record")
	if err := waitForPhase(ctx, orch, models.PhaseEHRDisplay); err != nil {
		sp.Stop()
		return err
	}
	sp.Stop()

	fmt.Fprintf(out, "%s %s\n\n", label("Cohort:"), query)
	if err := orch.ProceedToDrugSelection(); err != nil {
		return err
	}

	drug := pickDrug(drugName)
	fmt.Fprintf(out, "%s %s (%d source records)\n\n", label("Analyzing:"), drug.DisplayName, drug.RecordCount)

	if err := orch.RunAnalysis(drug.EntityID, drug.DisplayName, drug.RecordCount); err != nil {
		return err
	}

	snap := orch.Snapshot()
	if snap.Results == nil || snap.Results.Record == nil {
		return fmt.Errorf("analysis produced no record")
	}
	printRecord(out, snap.Results.Record)
	return nil
}

func waitForPhase(ctx context.Context, orch *workflow.Orchestrator, want models.Phase) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if orch.Snapshot().Phase == want {
				return nil
			}
		}
	}
}

func pickDrug(name string) demoDrug {
	if name != "" {
		for _, d := range demoDrugs {
			if strings.EqualFold(d.DisplayName, name) {
				return d
			}
		}
	}
	return demoDrugs[0]
}
