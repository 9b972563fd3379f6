package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"kesnek-mobile/internal/authapi"
	"kesnek-mobile/internal/config"
	"kesnek-mobile/internal/domain"
	"kesnek-mobile/internal/savedjobs"
	"kesnek-mobile/internal/session"
	"kesnek-mobile/internal/store"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	kv, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("abrir almacenamiento: %v", err)
	}
	defer closeStore()

	api := authapi.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
	records := store.NewSessionRecords(kv, logger)
	jobs := savedjobs.NewService(api, kv, logger)
	mgr := session.NewManager(logger, records, api, jobs,
		session.WithRequestTimeout(cfg.RequestTimeout),
		session.WithReconcileTimeout(cfg.SyncTimeout),
		session.WithStorageSchema(cfg.StorageSchema),
		session.WithRefreshOnRestore(cfg.RefreshOnRestore),
	)
	defer mgr.Wait()

	mgr.RestoreSession(ctx)

	for {
		printStatus(mgr)
		snap := mgr.Snapshot()
		if snap.State == session.StateAuthenticated {
			if snap.Session.Role == domain.RoleEmployee {
				fmt.Println("[1] Ver empleos guardados")
				fmt.Println("[2] Sincronizar empleos guardados")
			}
			fmt.Println("[3] Renovar token")
			fmt.Println("[4] Cerrar sesion")
		} else {
			fmt.Println("[1] Iniciar sesion")
			fmt.Println("[2] Registrarse")
			if snap.Pending != nil {
				fmt.Println("[3] Verificar email")
			}
		}
		fmt.Println("[Q] Salir")
		fmt.Print("Seleccion: ")

		choice := readLine(reader)
		if strings.EqualFold(choice, "Q") {
			return
		}
		mgr.ClearError()

		if snap.State == session.StateAuthenticated {
			switch choice {
			case "1":
				showSavedJobs(ctx, jobs)
			case "2":
				if err := mgr.SyncNow(ctx); err != nil {
					fmt.Printf("No se pudo sincronizar: %v\n", err)
				}
				showSavedJobs(ctx, jobs)
			case "3":
				if !mgr.RefreshSession(ctx) && mgr.LastError() == "" {
					fmt.Println("No se pudo renovar el token.")
				}
			case "4":
				mgr.Logout(ctx)
			default:
				fmt.Println("Seleccion invalida.")
			}
			continue
		}

		switch choice {
		case "1":
			loginFlow(ctx, reader, mgr)
		case "2":
			registerFlow(ctx, reader, mgr)
		case "3":
			if snap.Pending == nil {
				fmt.Println("Seleccion invalida.")
				continue
			}
			code := prompt(reader, "Codigo: ")
			mgr.VerifyEmail(ctx, code)
		default:
			fmt.Println("Seleccion invalida.")
		}
	}
}

func printStatus(mgr *session.Manager) {
	snap := mgr.Snapshot()
	fmt.Println("\n===== Kesnek =====")
	switch snap.State {
	case session.StateAuthenticated:
		s := snap.Session
		fmt.Printf("Sesion: %s (%s, %s)\n", s.Profile.DisplayName, s.Profile.Email, s.Role)
		if s.Employer != nil && s.Employer.CompanyName != "" {
			fmt.Printf("Empresa: %s\n", s.Employer.CompanyName)
		}
	default:
		fmt.Println("Sesion: no iniciada")
	}
	if snap.Pending != nil {
		fmt.Printf("Verificacion pendiente para %s (vence %s)\n", snap.Pending.Email, snap.Pending.ExpiresAt.Local().Format("15:04"))
	}
	if snap.Err != "" {
		fmt.Printf("! %s\n", snap.Err)
	}
}

func loginFlow(ctx context.Context, reader *bufio.Reader, mgr *session.Manager) {
	role, ok := readRole(reader)
	if !ok {
		fmt.Println(session.MsgAccountTypeRequired)
		return
	}
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")
	mgr.Login(ctx, email, password, role)
}

func registerFlow(ctx context.Context, reader *bufio.Reader, mgr *session.Manager) {
	role, ok := readRole(reader)
	if !ok {
		fmt.Println(session.MsgAccountTypeRequired)
		return
	}
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")
	fullName := prompt(reader, "Nombre completo: ")
	phone := prompt(reader, "Telefono (opcional): ")
	location := prompt(reader, "Ubicacion (opcional): ")

	switch role {
	case domain.RoleEmployee:
		var prefs []string
		for _, p := range strings.Split(prompt(reader, "Preferencias (separadas por coma): "), ",") {
			if p = strings.TrimSpace(p); p != "" {
				prefs = append(prefs, p)
			}
		}
		mgr.RegisterEmployee(ctx, domain.RegisterEmployeeInput{
			Email:       email,
			Password:    password,
			FullName:    fullName,
			PhoneNumber: phone,
			Location:    location,
			Preferences: prefs,
		})
	case domain.RoleEmployer:
		mgr.RegisterEmployer(ctx, domain.RegisterEmployerInput{
			Email:       email,
			Password:    password,
			FullName:    fullName,
			PhoneNumber: phone,
			Location:    location,
			CompanyName: prompt(reader, "Empresa: "),
			Industry:    prompt(reader, "Industria (opcional): "),
		})
	}
	if mgr.PendingVerification() != nil && mgr.State() != session.StateAuthenticated {
		fmt.Println("Te enviamos un codigo de verificacion por email.")
	}
}

func showSavedJobs(ctx context.Context, jobs *savedjobs.Service) {
	cached, err := jobs.Cached(ctx)
	if err != nil {
		fmt.Printf("No se pudo leer el cache: %v\n", err)
		return
	}
	if len(cached) == 0 {
		fmt.Println("No hay empleos guardados.")
		return
	}
	for i, j := range cached {
		fmt.Printf("[%d] %s", i+1, j.Title)
		if j.Company != "" {
			fmt.Printf(" - %s", j.Company)
		}
		fmt.Println()
	}
}

func readRole(reader *bufio.Reader) (domain.Role, bool) {
	raw := prompt(reader, "Tipo de cuenta [employee/employer]: ")
	return domain.ParseRole(raw)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	return readLine(reader)
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
