package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/angelmondragon/pharmacy-backoffice/internal/apitest"
	"github.com/angelmondragon/pharmacy-backoffice/internal/backoffice"
	"github.com/angelmondragon/pharmacy-backoffice/internal/cart"
	"github.com/angelmondragon/pharmacy-backoffice/internal/catalog"
	"github.com/angelmondragon/pharmacy-backoffice/internal/checkout"
	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/internal/session"
	"github.com/angelmondragon/pharmacy-backoffice/internal/shell"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

const (
	signedOutMessage  = "Sessão não iniciada. Use pharmacyctl login."
	loggedOutMessage  = "Sessão terminada"
	listErrorMessage  = "Não foi possível carregar os registos"
	statsErrorMessage = "Não foi possível carregar as estatísticas"
	uploadedMessage   = "Imagem enviada: %s"
	storefrontTitle   = "Farmácia"
)

var errUsage = errors.New("invalid usage")

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":      runLogin,
	"signup":     runSignUp,
	"logout":     runLogout,
	"whoami":     runWhoAmI,
	"storefront": runStorefront,
	"list":       runList,
	"delete":     runDelete,
	"upload":     runUpload,
	"stats":      runStats,
}

func subcommandFlags(a *app, name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(a.io.err)
	return flags
}

func runLogin(ctx context.Context, a *app, args []string) error {
	flags := subcommandFlags(a, "login")
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password; read from stdin when omitted")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	secret, err := a.password(*password)
	if err != nil {
		return err
	}
	sess, err := a.session(a.notifier())
	if err != nil {
		return err
	}
	user, err := sess.SignIn(ctx, forms.SignIn{Email: *email, Password: secret})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "%s (%s)\n", user.DisplayName(), user.UserType)
	return nil
}

func runSignUp(ctx context.Context, a *app, args []string) error {
	flags := subcommandFlags(a, "signup")
	name := flags.String("name", "", "full name")
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password; read from stdin when omitted")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	secret, err := a.password(*password)
	if err != nil {
		return err
	}
	sess, err := a.session(a.notifier())
	if err != nil {
		return err
	}
	_, err = sess.SignUp(ctx, forms.SignUp{Name: *name, Email: *email, Password: secret})
	return err
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	sess, err := a.session(a.notifier())
	if err != nil {
		return err
	}
	if err := sess.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.io.out, loggedOutMessage)
	return nil
}

func runWhoAmI(ctx context.Context, a *app, _ []string) error {
	sess, err := a.session(a.notifier())
	if err != nil {
		return err
	}
	user, err := a.signedIn(ctx, sess, apitest.CustomerEmail, apitest.CustomerPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "%s <%s> (%s)\n", user.DisplayName(), user.Email, user.UserType)
	return nil
}

func runStorefront(ctx context.Context, a *app, args []string) error {
	flags := subcommandFlags(a, "storefront")
	plain := flags.Bool("plain", false, "line-oriented shell instead of the full-screen view")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	inbox := &notify.Recorder{}
	var notes notify.Notifier = notify.Multi(inbox, notify.NewLogNotifier(a.logg))
	if *plain {
		notes = a.notifier()
	}

	sess, err := a.session(notes)
	if err != nil {
		return err
	}
	if _, err := a.signedIn(ctx, sess, apitest.CustomerEmail, apitest.CustomerPassword); err != nil {
		return err
	}

	provider, err := catalog.NewProvider(a.client, a.logg)
	if err != nil {
		return err
	}
	store := cart.NewStore(cart.WithMetrics(metrics.NewCartMetrics(a.registry)))
	sess.OnLogout(func(context.Context) error {
		store.Clear()
		return nil
	})

	var sh *shell.Shell
	bridge, err := checkout.NewBridge(a.client, store, sess,
		checkout.WithNotifier(notes),
		checkout.WithLogger(a.logg),
		checkout.WithMetrics(metrics.NewCheckoutMetrics(a.registry)),
		checkout.WithRefetch(func(ctx context.Context) error { return sh.Refresh(ctx) }),
	)
	if err != nil {
		return err
	}
	sh, err = shell.New(provider, store, bridge, sess,
		shell.WithFormatter(a.formatter),
		shell.WithLogger(a.logg),
	)
	if err != nil {
		return err
	}

	if *plain {
		if err := sh.Refresh(ctx); err != nil {
			a.logg.Warn(ctx, fmt.Sprintf("storefront.catalog_unavailable: %v", err))
		}
		return sh.Run(ctx, a.io.in, a.io.out)
	}
	program := tea.NewProgram(shell.NewModel(ctx, sh, inbox, storefrontTitle),
		tea.WithContext(ctx),
		tea.WithInput(a.io.in),
		tea.WithOutput(a.io.out),
		tea.WithAltScreen(),
	)
	stop := shell.WatchCart(store, program.Send)
	defer stop()
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runList(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		fmt.Fprintf(a.io.err, "uso: pharmacyctl list <%s>\n", resourceNames())
		return errUsage
	}
	kind, err := enums.ParseResource(args[0])
	if err != nil {
		fmt.Fprintf(a.io.err, "recurso inválido %q; use um de: %s\n", args[0], resourceNames())
		return errUsage
	}
	svc, err := a.backoffice(ctx)
	if err != nil {
		return err
	}
	table, err := svc.Table(ctx, kind, a.formatter)
	if err != nil {
		fmt.Fprintln(a.io.err, pkgerrors.APIMessage(err, listErrorMessage))
		return err
	}
	return table.Write(a.io.out)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.io.err, "uso: pharmacyctl delete <recurso> <id>")
		return errUsage
	}
	kind, err := enums.ParseResource(args[0])
	if err != nil {
		fmt.Fprintf(a.io.err, "recurso inválido %q; use um de: %s\n", args[0], resourceNames())
		return errUsage
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(a.io.err, "id inválido %q\n", args[1])
		return errUsage
	}
	svc, err := a.backoffice(ctx)
	if err != nil {
		return err
	}
	return svc.Delete(ctx, kind, id)
}

func runUpload(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.io.err, "uso: pharmacyctl upload <ficheiro>")
		return errUsage
	}
	if _, err := a.backoffice(ctx); err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintln(a.io.err, err)
		return err
	}
	defer f.Close()

	uploaded, err := a.client.UploadImage(ctx, filepath.Base(args[0]), f)
	if err != nil {
		fmt.Fprintln(a.io.err, pkgerrors.APIMessage(err, "Não foi possível enviar a imagem"))
		return err
	}
	fmt.Fprintf(a.io.out, uploadedMessage+"\n", uploaded.URL)
	return nil
}

func runStats(ctx context.Context, a *app, _ []string) error {
	svc, err := a.backoffice(ctx)
	if err != nil {
		return err
	}
	stats, err := svc.Statistics(ctx)
	if err != nil {
		fmt.Fprintln(a.io.err, pkgerrors.APIMessage(err, statsErrorMessage))
		return err
	}
	fmt.Fprintf(a.io.out, "Produtos: %d\nEncomendas: %d\nValor das encomendas: %s\n",
		stats.CountProducts, stats.CountOrders, a.formatter.Format(stats.TotalOrdersValue))
	return nil
}

// backoffice requires a signed-in session before handing out the service.
func (a *app) backoffice(ctx context.Context) (*backoffice.Service, error) {
	notes := a.notifier()
	sess, err := a.session(notes)
	if err != nil {
		return nil, err
	}
	if _, err := a.signedIn(ctx, sess, apitest.AdminEmail, apitest.AdminPassword); err != nil {
		return nil, err
	}
	return backoffice.NewService(a.client, backoffice.WithNotifier(notes), backoffice.WithLogger(a.logg))
}

// signedIn restores the stored session. Demo runs sign in with the seeded
// account instead of asking.
func (a *app) signedIn(ctx context.Context, sess *session.Session, demoEmail, demoPassword string) (*pharmacyapi.User, error) {
	user, err := sess.Hydrate(ctx)
	if err == nil {
		return user, nil
	}
	if a.demo && errors.Is(err, session.ErrSignedOut) {
		return sess.SignIn(ctx, forms.SignIn{Email: demoEmail, Password: demoPassword})
	}
	if errors.Is(err, session.ErrSignedOut) || pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		fmt.Fprintln(a.io.err, signedOutMessage)
	}
	return nil, err
}

func (a *app) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(a.io.err, "Palavra-passe: ")
	line, err := bufio.NewReader(a.io.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func resourceNames() string {
	names := make([]string, 0, len(enums.Resources()))
	for _, r := range enums.Resources() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
