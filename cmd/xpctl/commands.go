package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lg/wellness-xp-api/internal/fitness"
	"lg/wellness-xp-api/internal/store"
	"lg/wellness-xp-api/internal/xp"
)

var showCmd = &cobra.Command{
	Use:   "show <user_id>",
	Short: "Show a user's profile, XP log and level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := openStore(cmd.Context())
		sum, err := xp.NewLedger(s).Summary(args[0])
		if err != nil {
			return err
		}
		p, _ := s.Profile(args[0])

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User:        %s\n", p.UserID)
		fmt.Fprintf(out, "Challenge:   %s (x%.1f)\n", p.ChallengeLevel, p.XPMultiplier)
		fmt.Fprintf(out, "Goal:        %s, %s diet\n", p.GoalType.Label(), p.DietType)
		fmt.Fprintf(out, "Calories:    %d maintenance, %d target\n", p.MaintenanceCalories, p.TargetCalories)
		fmt.Fprintf(out, "Water:       %.1f L/day\n", p.DailyWaterTargetLiters)
		fmt.Fprintf(out, "Total XP:    %d\n", sum.TotalXP)
		fmt.Fprintf(out, "Level:       %d %s (%.0f%% to next)\n", sum.Level.Current.ID, sum.Level.Current.Title, sum.Level.Progress*100)
		for _, date := range slices.Sorted(maps.Keys(sum.DailyXP)) {
			fmt.Fprintf(out, "  %s  %d\n", date, sum.DailyXP[date])
		}
		return nil
	},
}

// verifyCmd reads the raw document, without the reconciliation Open applies,
// and reports every total_xp that disagrees with its log.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every total_xp equals the sum of its XP log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := store.NewFileSnapshotter(snapshotPath).Load(cmd.Context())
		if err != nil {
			return err
		}
		problems := verifySnapshot(snap)
		for _, p := range problems {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d problem(s) found", len(problems))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d user(s) consistent\n", len(snap.UserProfiles))
		return nil
	},
}

func verifySnapshot(snap store.Snapshot) []string {
	var problems []string
	for _, id := range slices.Sorted(maps.Keys(snap.UserProfiles)) {
		sum := 0
		for _, v := range snap.UserXPLog[id] {
			sum += v
		}
		if total := snap.UserProfiles[id].TotalXP; total != sum {
			problems = append(problems, fmt.Sprintf("%s: total_xp %d != log sum %d", id, total, sum))
		}
	}
	for _, id := range slices.Sorted(maps.Keys(snap.UserXPLog)) {
		if _, ok := snap.UserProfiles[id]; !ok {
			problems = append(problems, fmt.Sprintf("%s: xp log without profile", id))
		}
	}
	return problems
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the level ladder",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range xp.Levels {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-18s %5d XP\n", l.ID, l.Title, l.Threshold)
		}
	},
}

var resetXP bool

// onboardCmd prompts for the onboarding fields and writes the profile
// straight into the snapshot file.
var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Interactively onboard (or re-onboard) a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := promptOnboarding(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		p, err := store.NewProfile(in)
		if err != nil {
			return err
		}

		s, fs := openStore(cmd.Context())
		stored, _ := s.Onboard(p, resetXP)
		if err := fs.Save(cmd.Context(), s.Snapshot()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\nUser onboarded successfully!\n")
		fmt.Fprintf(out, "  ID:          %s\n", stored.UserID)
		fmt.Fprintf(out, "  Target kcal: %d\n", stored.TargetCalories)
		fmt.Fprintf(out, "  Total XP:    %d\n", stored.TotalXP)
		return nil
	},
}

func init() {
	onboardCmd.Flags().BoolVar(&resetXP, "reset-xp", false, "Clear existing XP when re-onboarding")
}

func promptOnboarding(r io.Reader, w io.Writer) (fitness.OnboardingInput, error) {
	reader := bufio.NewReader(r)
	ask := func(label string) string {
		fmt.Fprintf(w, "%s: ", label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}
	askFloat := func(label string) (float64, error) {
		v, err := strconv.ParseFloat(ask(label), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: expected a number", label)
		}
		return v, nil
	}
	askInt := func(label string) (int, error) {
		v, err := strconv.Atoi(ask(label))
		if err != nil {
			return 0, fmt.Errorf("%s: expected a whole number", label)
		}
		return v, nil
	}

	var in fitness.OnboardingInput
	var err error
	in.UserID = ask("User ID")
	if in.ChallengeLevel, err = fitness.ParseChallengeLevel(ask("Challenge level (soft/medium/hard)")); err != nil {
		return in, err
	}
	if in.GoalType, err = fitness.ParseGoalType(ask("Goal (weight_loss/weight_gain/maintenance)")); err != nil {
		return in, err
	}
	if in.DietType, err = fitness.ParseDietType(ask("Diet type")); err != nil {
		return in, err
	}
	if in.CurrentWeightKG, err = askFloat("Current weight (kg)"); err != nil {
		return in, err
	}
	if in.GoalWeightKG, err = askFloat("Goal weight (kg)"); err != nil {
		return in, err
	}
	if in.HeightCM, err = askFloat("Height (cm)"); err != nil {
		return in, err
	}
	if in.Age, err = askInt("Age"); err != nil {
		return in, err
	}
	in.Sex = ask("Sex")
	if meals := ask("Meals per day [3]"); meals != "" {
		if in.PreferredMealsPerDay, err = strconv.Atoi(meals); err != nil {
			return in, errors.New("meals per day: expected a whole number")
		}
	}
	return in, nil
}
