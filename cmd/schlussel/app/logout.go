package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pepicrft/schlussel/internal/formula"
	"github.com/pepicrft/schlussel/internal/formulaio"
)

func newLogoutCmd(s *state) *cobra.Command {
	var method, client, identity string

	cmd := &cobra.Command{
		Use:   "logout <formula>",
		Short: "Delete the stored credential for a formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), s, args[0], method, client, identity)
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "Authentication method the credential was stored under")
	cmd.Flags().StringVar(&client, "client", "", "Named client the credential was stored under")
	cmd.Flags().StringVar(&identity, "identity", "", "Identity qualifier the credential was stored under")

	return cmd
}

func runLogout(ctx context.Context, s *state, formulaRef, method, client, identity string) error {
	f, err := formulaio.Resolve(s.registry, formulaRef)
	if err != nil {
		return err
	}

	var namedClient *formula.Client
	if client != "" {
		for i := range f.Clients {
			if f.Clients[i].Name == client {
				namedClient = &f.Clients[i]
				break
			}
		}
	}
	methodName, err := formula.SelectMethod(f, method, namedClient)
	if err != nil {
		return err
	}

	key, err := formula.StorageKey(f.ID, methodName, identity)
	if err != nil {
		return err
	}

	store, err := s.openStore()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, key); err != nil {
		return err
	}

	fmt.Printf("Removed credential for %s (key %s)\n", f.Label, key)
	return nil
}
