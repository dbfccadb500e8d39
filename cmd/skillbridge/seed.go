package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/factory"
)

var seedCmd = &cobra.Command{
	Use:   "seed [scenario-id]",
	Short: "Load a demo scenario into the configured store",
	Long:  "Loads one of the embedded YAML contract fixtures. With --list, prints the available scenarios instead.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list || len(args) == 0 {
			infos, err := factory.Scenarios()
			if err != nil {
				return err
			}
			formatScenarios(os.Stdout, infos)
			return nil
		}

		fx, err := factory.Scenario(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			if err := st.Reset(ctx); err != nil {
				return eris.Wrap(err, "seed: reset store")
			}
		}
		if err := factory.Load(ctx, st, fx); err != nil {
			return eris.Wrapf(err, "seed: load %s", fx.ID)
		}

		zap.L().Info("scenario loaded",
			zap.String("scenario", fx.ID),
			zap.Int64("contract_id", fx.ContractID),
		)
		fmt.Fprintf(os.Stdout, "Loaded %s (contract %d)\n", fx.ID, fx.ContractID)
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("list", false, "list available scenarios")
	seedCmd.Flags().Bool("reset", false, "clear the store before loading")
	rootCmd.AddCommand(seedCmd)
}
