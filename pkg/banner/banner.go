package banner

import (
	"fmt"

	"bmcd/pkg/config"
)

const banner = `
██████╗ ███╗   ███╗ ██████╗██████╗
██╔══██╗████╗ ████║██╔════╝██╔══██╗
██████╔╝██╔████╔██║██║     ██║  ██║
██╔══██╗██║╚██╔╝██║██║     ██║  ██║
██████╔╝██║ ╚═╝ ██║╚██████╗██████╔╝
╚═════╝ ╚═╝     ╚═╝ ╚═════╝╚═════╝
`

// Print renders the startup banner with the effective configuration so
// operators can see at a glance what the daemon will do.
func Print(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dbPath := eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Storage.DBPath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:    %s\n", addr)
	fmt.Printf("Event log: %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:   %s\n", version)
	}
	fmt.Printf("Config:    %s\n", src)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /redfish/v1 - service root")
	fmt.Println("GET  /redfish/v1/Chassis - chassis collection")
	fmt.Println("GET  /redfish/v1/Chassis/{id}/FabricAdapters - fabric adapters")
	fmt.Println("GET  /redfish/v1/Managers/bmc/LogServices/EventLog/Entries - event log")
	fmt.Println("POST /redfish/v1/Managers/bmc/LogServices/EventLog/Actions/LogService.ClearLog")

	fmt.Println("\n== Production? ================================================")
	tokens := 0
	if eff.Config != nil {
		tokens = len(eff.Config.Security.Tokens)
	}
	if tokens > 0 {
		fmt.Printf("- Auth tokens: OK (%d)\n", tokens)
	} else {
		fmt.Println("- Auth tokens: MISSING (API is open)")
	}

	tlsOK := eff.Config != nil &&
		eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != ""
	if tlsOK {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}

	if dbPath != "" {
		fmt.Printf("- Event log path: %s\n", dbPath)
	} else {
		fmt.Println("- Event log path: not set (use --db or BMCD_DB_PATH)")
	}

	retEnabled := eff.Config != nil && eff.Config.Retention.Enabled
	if retEnabled {
		info := ""
		if eff.Config.Retention.Cron != "" {
			info = "cron=" + eff.Config.Retention.Cron
		}
		if p := eff.Config.Retention.Period.Duration(); p > 0 {
			if info != "" {
				info += " "
			}
			info += fmt.Sprintf("period=%s", p)
		}
		if info != "" {
			fmt.Printf("- Retention: enabled (%s)\n", info)
		} else {
			fmt.Println("- Retention: enabled")
		}
	} else {
		fmt.Println("- Retention: disabled")
	}

	subs := 0
	if eff.Config != nil {
		subs = len(eff.Config.Notify.Subscribers)
	}
	if subs > 0 {
		fmt.Printf("- Event subscribers: %d\n", subs)
	} else {
		fmt.Println("- Event subscribers: none")
	}

	fmt.Println("\n== Logs: ======================================================")
}
