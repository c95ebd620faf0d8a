package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/pepicrft/schlussel/internal/formula"
	"github.com/pepicrft/schlussel/internal/formulaio"
	"github.com/pepicrft/schlussel/internal/logging"
	"github.com/pepicrft/schlussel/internal/oauthflow"
	"github.com/pepicrft/schlussel/internal/token"
)

func newLoginCmd(s *state) *cobra.Command {
	var method, client, identity, redirectURI string

	cmd := &cobra.Command{
		Use:   "login <formula>",
		Short: "Authenticate against a formula and store the resulting credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), s, args[0], method, client, identity, redirectURI)
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "Authentication method to use (auto-selected if omitted and unambiguous)")
	cmd.Flags().StringVar(&client, "client", "", "Named client from the formula to use")
	cmd.Flags().StringVar(&identity, "identity", "", "Identity qualifier for the storage key, for multi-account formulas")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "http://127.0.0.1:0/callback", "Redirect URI for Authorization Code flows (port 0 binds an ephemeral loopback listener)")

	return cmd
}

func runLogin(ctx context.Context, s *state, formulaRef, method, client, identity, redirectURI string) error {
	f, err := formulaio.Resolve(s.registry, formulaRef)
	if err != nil {
		return err
	}

	methodName, methodDef, resolvedClient, err := resolveMethodAndClient(f, method, client, "")
	if err != nil {
		return err
	}

	plan, err := formula.ResolvePlan(ctx, methodDef, resolvedClient, redirectURI)
	if err != nil {
		return err
	}

	printScript(plan.Script)

	var tok *token.Token
	switch plan.Kind {
	case formula.KindAuthorizationCode:
		tok, err = runAuthorizationCodeLogin(ctx, plan, methodDef, resolvedClient)
	case formula.KindDeviceCode:
		tok, err = runDeviceCodeLogin(ctx, plan, methodDef, resolvedClient)
	case formula.KindManual:
		tok, err = runManualLogin()
	}
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
	if err := store.Save(ctx, key, tok); err != nil {
		return err
	}

	fmt.Printf("Stored credential for %s (key %s)\n", f.Label, key)
	return nil
}

func runAuthorizationCodeLogin(ctx context.Context, plan *formula.Plan, method formula.MethodDef, client *formula.ResolvedClient) (*token.Token, error) {
	defer plan.Listener.Close()

	openInBrowser(plan.Context.AuthorizeURL)

	result, err := oauthflow.AwaitCallback(ctx, plan.Listener)
	if err != nil {
		return nil, err
	}
	if err := oauthflow.CheckCallbackState(result, plan.Context.State); err != nil {
		return nil, err
	}

	return oauthflow.ExchangeAuthorizationCode(ctx, method.Endpoints.Token, client.ID, client.Secret, result.Code, plan.Context.RedirectURI, plan.Context.PKCEVerifier)
}

func runDeviceCodeLogin(ctx context.Context, plan *formula.Plan, method formula.MethodDef, client *formula.ResolvedClient) (*token.Token, error) {
	verificationURL := plan.Context.VerificationURIComplete
	if verificationURL == "" {
		verificationURL = plan.Context.VerificationURI
	}
	openInBrowser(verificationURL)

	return oauthflow.PollDeviceToken(ctx, method.Endpoints.Token, client.ID, plan.DeviceAuth)
}

func runManualLogin() (*token.Token, error) {
	fmt.Print("Enter credential value: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	return &token.Token{AccessToken: strings.TrimSpace(line), TokenType: "opaque"}, nil
}

func printScript(steps []formula.ScriptStep) {
	for _, step := range steps {
		if step.Note != "" {
			fmt.Printf("- %s: %s (%s)\n", step.Type, step.Value, step.Note)
		} else {
			fmt.Printf("- %s: %s\n", step.Type, step.Value)
		}
	}
}

// openInBrowser best-effort opens url: core validates it per spec.md §6,
// but a failure to launch a browser never aborts the flow — the printed
// script already gave the user everything they need to proceed by hand.
func openInBrowser(url string) {
	if url == "" {
		return
	}
	if err := oauthflow.ValidateBrowserURL(url); err != nil {
		logging.Debugw("refusing to open url", "error", err)
		return
	}
	if err := browser.OpenURL(url); err != nil {
		logging.Debugw("failed to open browser", "error", err)
	}
}
