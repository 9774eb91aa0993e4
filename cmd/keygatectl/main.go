// keygatectl es la herramienta administrativa: opera tokens contra una
// instancia corriendo y registra clientes/usuarios directo en Postgres.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
	"github.com/dropDatabas3/keygate/internal/security/password"
	"github.com/dropDatabas3/keygate/internal/store/pg"
)

var (
	baseURL string
	dsn     string
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "keygatectl",
		Short:        "Herramienta administrativa de keygate",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:8080", "URL base del servicio")

	root.AddCommand(tokenCmd())
	root.AddCommand(seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --- token: opera contra el API HTTP ---

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emitir, validar, rotar y revocar tokens firmados",
	}

	var userID, email string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Emitir un par access+refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/auth/token", map[string]string{
				"user_id": userID,
				"email":   email,
			})
		},
	}
	generate.Flags().StringVar(&userID, "user-id", "", "ID del usuario")
	generate.Flags().StringVar(&email, "email", "", "email del usuario")
	_ = generate.MarkFlagRequired("user-id")
	_ = generate.MarkFlagRequired("email")

	var token string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validar un access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/auth/validate", map[string]string{"token": token})
		},
	}
	validate.Flags().StringVar(&token, "token", "", "access token")
	_ = validate.MarkFlagRequired("token")

	var refreshToken string
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Rotar un refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/auth/refresh", map[string]string{"refresh_token": refreshToken})
		},
	}
	refresh.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token")
	_ = refresh.MarkFlagRequired("refresh-token")

	var revokeToken string
	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Revocar un access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/auth/revoke", map[string]string{"token": revokeToken})
		},
	}
	revoke.Flags().StringVar(&revokeToken, "token", "", "access token")
	_ = revoke.MarkFlagRequired("token")

	cmd.AddCommand(generate, validate, refresh, revoke)
	return cmd
}

func postJSON(path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s %s\n%s\n", resp.Proto, resp.Status, bytes.TrimSpace(out))
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server error: %s", resp.Status)
	}
	return nil
}

// --- seed: escribe directo en Postgres ---

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Registrar clientes y usuarios en la base",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "DSN de Postgres (default: env DATABASE_URL)")

	var clientID, clientSecret, redirectURI string
	seedClient := &cobra.Command{
		Use:   "client",
		Short: "Registrar un cliente OAuth2",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, ctx, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			err = store.CreateClient(ctx, &repository.Client{
				ID:          clientID,
				Secret:      clientSecret,
				RedirectURI: redirectURI,
			})
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			fmt.Println("client registered:", clientID)
			return nil
		},
	}
	seedClient.Flags().StringVar(&clientID, "id", "", "client_id")
	seedClient.Flags().StringVar(&clientSecret, "secret", "", "client_secret")
	seedClient.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect_uri registrado")
	_ = seedClient.MarkFlagRequired("id")
	_ = seedClient.MarkFlagRequired("secret")
	_ = seedClient.MarkFlagRequired("redirect-uri")

	var username, email, plain string
	seedUser := &cobra.Command{
		Use:   "user",
		Short: "Registrar un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, ctx, cleanup, err := openStore()
			if err != nil {
				return err
			}
			defer cleanup()

			hash, err := password.Hash(password.Default, plain)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			id := uuid.NewString()
			err = store.CreateUser(ctx, &repository.User{
				ID:           id,
				Username:     username,
				Email:        email,
				PasswordHash: hash,
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Println("user registered:", id)
			return nil
		},
	}
	seedUser.Flags().StringVar(&username, "username", "", "username")
	seedUser.Flags().StringVar(&email, "email", "", "email")
	seedUser.Flags().StringVar(&plain, "password", "", "password en claro (se guarda el hash)")
	_ = seedUser.MarkFlagRequired("username")
	_ = seedUser.MarkFlagRequired("email")
	_ = seedUser.MarkFlagRequired("password")

	cmd.AddCommand(seedClient, seedUser)
	return cmd
}

func openStore() (*pg.Store, context.Context, func(), error) {
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, nil, nil, fmt.Errorf("missing --dsn (or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := pg.New(ctx, dsn)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	cleanup := func() {
		store.Close()
		cancel()
	}
	return store, ctx, cleanup, nil
}
