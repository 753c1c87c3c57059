package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/m3rciful/easyshop/bots/easyshop"
	corecmd "github.com/m3rciful/easyshop/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return easyshop.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			shopCfg, ok := cfg.(*easyshop.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return easyshop.Bootstrap(ctx, shopCfg)
		},
	})
	if err != nil {
		log.Printf("easyshop: %v", err)
		os.Exit(1)
	}
}
