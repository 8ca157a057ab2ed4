package main

import (
	"log"
	"recordsync/provider"
	"recordsync/version"

	"github.com/hashicorp/terraform-plugin-sdk/v2/plugin"
)

func main() {
	log.Printf("[INFO] Starting recordsync provider %s", version.Full())

	plugin.Serve(&plugin.ServeOpts{
		ProviderFunc: provider.Provider,
	})
}
