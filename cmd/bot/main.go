package main

import (
	"context"
	"fmt"
	"log"

	corecmd "github.com/m3rciful/giveabot/core/cmd"
	"github.com/m3rciful/giveabot/internal/bot"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*bot.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			return bot.NewApp(context.Background(), cfg)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
