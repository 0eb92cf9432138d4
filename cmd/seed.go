package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/legalease/legalease/internal/casefile"
	"github.com/legalease/legalease/internal/policy"
	"github.com/legalease/legalease/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed sample cases into the database",
	Long: `Seed sample cases into the SQLite database. This is useful for local
testing of the list, show and log commands without running the reasoning
engine.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	config := GetConfig()

	logger := log.New(cmd.OutOrStdout(), "[seed] ", log.LstdFlags)
	logger.Println("Seeding sample data...")

	// Initialize store
	st, err := store.NewStore(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	userID := config.User.ID

	existing, err := st.ListCases(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}
	if len(existing) > 0 {
		logger.Printf("Database already has %d cases, nothing to do", len(existing))
		return nil
	}

	if err := seedDraftCase(ctx, st, userID); err != nil {
		return err
	}
	if err := seedFiledCase(ctx, st, userID); err != nil {
		return err
	}

	logger.Println("Seeded 2 sample cases")
	return nil
}

func seedDraftCase(ctx context.Context, st *store.Store, userID string) error {
	research := &casefile.Classification{
		Type:              "FLIGHT_CANCELLATION",
		BaseJustification: "EU Regulation 261/2004",
		Summary:           "Flight cancelled less than 14 days before departure with no re-routing offered.",
		RequiredInfo: []casefile.Field{
			{ID: "flight_number", Label: "Flight number", Placeholder: "e.g. BA855", Type: casefile.FieldText},
			{ID: "departure_date", Label: "Departure date", Type: casefile.FieldDate},
			{ID: "booking_reference", Label: "Booking reference", Type: casefile.FieldText},
		},
		Compensation: []casefile.CompensationEstimate{
			{Area: "EU 261/2004 Article 7", Estimate: "EUR 400"},
		},
		Title: "Claim against Brightwing Air",
	}

	rec, err := st.CreateCase(ctx, userID, store.GenerateCaseRef(userID),
		"My flight from Prague to London was cancelled two days before departure and the airline offered no alternative.",
		research)
	if err != nil {
		return fmt.Errorf("failed to seed draft case: %w", err)
	}

	_, err = st.UpdateCase(ctx, rec.ID, store.CaseUpdate{
		SetFormData: true,
		FormData:    map[string]string{"flight_number": "BW2047"},
	})
	if err != nil {
		return fmt.Errorf("failed to seed draft form data: %w", err)
	}
	return nil
}

func seedFiledCase(ctx context.Context, st *store.Store, userID string) error {
	deadline := time.Now().Add(policy.ResponseWindow)
	caseData := &casefile.Dossier{
		Title: "Defective Laptop Refund — Norvik Electronics",
		Timeline: []casefile.TimelineStep{
			{Title: "Formal complaint sent", Description: "Written refund demand delivered to the seller.", Timeframe: "Day 0"},
			{Title: "Seller response window", Description: "Statutory period for the seller to respond.", Timeframe: "14 days"},
			{Title: "Escalation to consumer authority", Description: "File with the trade inspection authority if the seller does not comply.", Timeframe: "Day 15+"},
			{Title: "Small claims filing", Description: "Court filing as the final remedy.", Timeframe: "Day 30+"},
		},
		Email: casefile.Correspondence{
			Subject:          "Formal refund demand — defective laptop, order NV-88412",
			RecipientName:    "Norvik Electronics Customer Care",
			RecipientAddress: "support@norvik.example",
			Body:             "Dear Sir or Madam,\n\nI am writing to demand a full refund for the defective laptop delivered under order NV-88412.\n\nYours faithfully",
		},
		Checklist:         []string{"Purchase invoice", "Photos of the defect", "Prior support correspondence"},
		ResponseDeadline:  &deadline,
		EscalationHistory: []casefile.Escalation{},
	}

	rec, err := st.CreateCase(ctx, userID, store.GenerateCaseRef(userID),
		"The laptop I bought stopped working after a week and the shop refuses a refund.",
		&casefile.Classification{
			Type:              "FAULTY_GOODS",
			BaseJustification: "Consumer Rights Act 2015",
			Summary:           "Goods not of satisfactory quality; short-term right to reject applies.",
			RequiredInfo: []casefile.Field{
				{ID: "order_number", Label: "Order number", Type: casefile.FieldText},
				{ID: "purchase_date", Label: "Purchase date", Type: casefile.FieldDate},
			},
		})
	if err != nil {
		return fmt.Errorf("failed to seed filed case: %w", err)
	}

	if _, err := st.UpdateCase(ctx, rec.ID, store.CaseUpdate{
		SetFormData: true,
		FormData:    map[string]string{"order_number": "NV-88412", "purchase_date": "2026-08-02"},
		SetCaseData: true,
		CaseData:    caseData,
		SetStatus:   true,
		Status:      casefile.BackendComplaintSubmitted,
	}); err != nil {
		return fmt.Errorf("failed to seed filed case data: %w", err)
	}

	if _, err := st.AddStatusLog(ctx, rec.ID, userID,
		"Case formally filed under Consumer Rights Act 2015. Corresponding letters sent to relevant parties.", false); err != nil {
		return fmt.Errorf("failed to seed status log: %w", err)
	}
	return nil
}
