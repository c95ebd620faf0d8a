package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pepicrft/schlussel/internal/formula"
	"github.com/pepicrft/schlussel/internal/formulaio"
	"github.com/pepicrft/schlussel/internal/refresh"
)

func newTokenCmd(s *state) *cobra.Command {
	var method, client, identity string

	cmd := &cobra.Command{
		Use:   "token <formula>",
		Short: "Print a valid access token, refreshing it first if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd.Context(), s, args[0], method, client, identity)
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "Authentication method to use (auto-selected if omitted and unambiguous)")
	cmd.Flags().StringVar(&client, "client", "", "Named client from the formula to use")
	cmd.Flags().StringVar(&identity, "identity", "", "Identity qualifier for the storage key, for multi-account formulas")

	return cmd
}

func runToken(ctx context.Context, s *state, formulaRef, method, client, identity string) error {
	f, err := formulaio.Resolve(s.registry, formulaRef)
	if err != nil {
		return err
	}

	methodName, methodDef, resolvedClient, err := resolveMethodAndClient(f, method, client, "")
	if err != nil {
		return err
	}
	if methodDef.Endpoints == nil || methodDef.Endpoints.Token == "" {
		return fmt.Errorf("method %s has no token endpoint to refresh against", methodName)
	}

	key, err := formula.StorageKey(f.ID, methodName, identity)
	if err != nil {
		return err
	}

	store, err := s.openStore()
	if err != nil {
		return err
	}
	lockDir, err := s.cfg.LockDir()
	if err != nil {
		return err
	}

	coordinator := refresh.NewCoordinator(store, lockDir)
	tok, err := coordinator.GetValidToken(ctx, key, s.cfg.RefreshTheta, refresh.TokenEndpoint{
		URL:          methodDef.Endpoints.Token,
		ClientID:     resolvedClient.ID,
		ClientSecret: resolvedClient.Secret,
	})
	if err != nil {
		return err
	}

	fmt.Println(tok.AccessToken)
	return nil
}
