package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/prepaid/internal/clock"
	"github.com/smallbiznis/prepaid/internal/config"
	"github.com/smallbiznis/prepaid/internal/credential"
	"github.com/smallbiznis/prepaid/internal/observability"
	"github.com/smallbiznis/prepaid/internal/prepaid"
	"github.com/smallbiznis/prepaid/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		// Functional Domains
		credential.Module,
		prepaid.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
