package banner

import (
	"fmt"

	"chatcore/pkg/config"
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗ ██████╗ ██████╗ ██████╗ ███████╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔════╝██╔═══██╗██╔══██╗██╔════╝
██║     ███████║███████║   ██║   ██║     ██║   ██║██████╔╝█████╗
██║     ██╔══██║██╔══██║   ██║   ██║     ██║   ██║██╔══██╗██╔══╝
╚██████╗██║  ██║██║  ██║   ██║   ╚██████╗╚██████╔╝██║  ██║███████╗
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝
`

// PrintWithEff prints the startup banner using the effective config.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dbPath := eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Server.DBPath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}
	engine := "nethttp"
	if eff.Config != nil && eff.Config.Server.Engine != "" {
		engine = eff.Config.Server.Engine
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	fmt.Printf("Engine:   %s\n", engine)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/conversations                      - Create a conversation")
	fmt.Println("GET  /v1/conversations                      - List your conversations")
	fmt.Println("POST /v1/conversations/{id}/messages        - Send a message")
	fmt.Println("GET  /v1/conversations/{id}/messages        - Read the timeline")
	fmt.Println("GET  /v1/search?q=<text>                    - Search your messages")

	fmt.Println("\n== Production? =================================================")
	if eff.Config != nil {
		be := len(eff.Config.Security.APIKeys.Backend)
		fe := len(eff.Config.Security.APIKeys.Frontend)
		if be == 0 && fe == 0 {
			fmt.Println("No API keys configured; every request will be rejected.")
			fmt.Println("Set security.api_keys in the config file or CHATCORE_API_*_KEYS env vars.")
		}
		if eff.Config.Server.TLS.CertFile == "" {
			fmt.Println("TLS is off; terminate it upstream or set server.tls.")
		}
	}
}
