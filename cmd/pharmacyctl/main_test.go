package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backoffice/internal/apitest"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/config"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func setEnv(t *testing.T, baseURL string) string {
	t.Helper()
	tokenFile := filepath.Join(t.TempDir(), "access_token")
	t.Setenv(config.EnvAppEnv, "test")
	t.Setenv(config.EnvAPIBaseURL, baseURL)
	t.Setenv(config.EnvSessionTokenFile, tokenFile)
	t.Setenv(config.EnvRedisURL, "")
	t.Setenv(config.EnvRedisAddr, "")
	t.Setenv(config.EnvLogLevel, "error")
	return tokenFile
}

func invoke(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestLoginWhoAmILogout(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	tokenFile := setEnv(t, srv.URL)

	res := invoke(t, apitest.CustomerPassword+"\n", "login", "--email", apitest.CustomerEmail)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "[ok] Login efectuado com sucesso!")
	assert.Contains(t, res.stdout, "Maria Cliente (customer)")
	_, err := os.Stat(tokenFile)
	require.NoError(t, err)

	res = invoke(t, "", "whoami")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "Maria Cliente <"+apitest.CustomerEmail+"> (customer)\n", res.stdout)

	res = invoke(t, "", "logout")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, loggedOutMessage)
	_, err = os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(err))

	res = invoke(t, "", "whoami")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, signedOutMessage)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	setEnv(t, srv.URL)

	res := invoke(t, "", "login", "--email", apitest.CustomerEmail, "--password", "errada")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stdout, "[erro] "+apitest.CredentialsMessage)
}

func TestListWritesTable(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	setEnv(t, srv.URL)

	res := invoke(t, "", "login", "--email", apitest.AdminEmail, "--password", apitest.AdminPassword)
	require.Equal(t, exitOK, res.code, res.stderr)

	res = invoke(t, "", "list", "product")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Paracetamol 500mg")
	assert.Contains(t, res.stdout, "1000,00\u00a0Kz")
}

func TestListAsCustomerShowsServerMessage(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	setEnv(t, srv.URL)

	res := invoke(t, "", "login", "--email", apitest.CustomerEmail, "--password", apitest.CustomerPassword)
	require.Equal(t, exitOK, res.code, res.stderr)

	res = invoke(t, "", "list", "supplier")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, apitest.ForbiddenMessage)
}

func TestUsageErrors(t *testing.T) {
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	setEnv(t, srv.URL)

	cases := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"dance"}},
		{name: "list without resource", args: []string{"list"}},
		{name: "unknown resource", args: []string{"list", "medicos"}},
		{name: "delete bad id", args: []string{"delete", "product", "abc"}},
		{name: "upload without file", args: []string{"upload"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := invoke(t, "", tc.args...)
			assert.Equal(t, exitUsage, res.code)
			assert.Equal(t, 0, srv.OrderCount())
		})
	}
}

func TestMissingConfigFails(t *testing.T) {
	t.Setenv(config.EnvAppEnv, "")
	require.NoError(t, os.Unsetenv(config.EnvAppEnv))
	res := invoke(t, "", "whoami")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "failed to load config")
}

func TestDemoStorefrontCheckout(t *testing.T) {
	setEnv(t, "http://localhost:1")

	res := invoke(t, "add 1 2\ncarrinho\ncheckout\nsair\n", "--demo", "--metrics", "storefront", "--plain")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Carrinho (1)  Total: 2000,00\u00a0Kz")
	assert.Contains(t, res.stdout, "Encomenda #1  Total: 2000,00\u00a0Kz")
	assert.Contains(t, res.stdout, "[ok] ")
	assert.Contains(t, res.stderr, `pharmacy_checkout_submissions_total{outcome="succeeded"} 1`)
	assert.Contains(t, res.stderr, "pharmacy_cart_mutations_total")
	assert.Contains(t, res.stderr, "pharmacy_api_requests_total")
}

func TestDemoBackofficeCommands(t *testing.T) {
	setEnv(t, "http://localhost:1")

	res := invoke(t, "", "--demo", "stats")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Produtos: 5\nEncomendas: 0\n")

	res = invoke(t, "", "--demo", "delete", "product-category", "3")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "[ok] Categoria eliminada com sucesso!")

	res = invoke(t, "", "--demo", "delete", "product", "99")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stdout, "[erro] "+apitest.NotFoundMessage)
}

func TestDemoUpload(t *testing.T) {
	setEnv(t, "http://localhost:1")
	dir := t.TempDir()

	png := filepath.Join(dir, "caixa.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o600))
	res := invoke(t, "", "--demo", "upload", png)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Imagem enviada: http://")
	assert.Contains(t, res.stdout, ".png")

	text := filepath.Join(dir, "notas.txt")
	require.NoError(t, os.WriteFile(text, []byte("não é uma imagem"), 0o600))
	res = invoke(t, "", "--demo", "upload", text)
	assert.Equal(t, exitError, res.code)
}
