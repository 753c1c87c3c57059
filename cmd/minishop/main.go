package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/m3rciful/easyshop/bots/minishop"
	corecmd "github.com/m3rciful/easyshop/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return minishop.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			miniCfg, ok := cfg.(*minishop.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return minishop.Bootstrap(ctx, miniCfg)
		},
	})
	if err != nil {
		log.Printf("minishop: %v", err)
		os.Exit(1)
	}
}
