package main

import (
	"fmt"
	"os"

	"agora-node/lib/logger"
	"agora-node/modules/aggregate"
	"agora-node/modules/api"
	"agora-node/modules/conviction"
	"agora-node/modules/db"
	"agora-node/modules/db/agora"
	"agora-node/modules/db/agora/activity"
	"agora-node/modules/db/agora/members"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/db/agora/votes"
	"agora-node/modules/metrics"
)

func main() {
	dbConf := db.NewDbConfig()

	if mongoUrl := os.Getenv("MONGO_URL"); mongoUrl != "" {
		dbConf.Update(func(dc *db.DbConfig) {
			dc.DbURI = mongoUrl
			if dc.DbName == "" {
				dc.DbName = "agora"
			}
		})
	}
	db := db.New(dbConf)
	agoraDb := agora.New(db, dbConf)
	membersDb := members.New(agoraDb)
	proposalsDb := proposals.New(agoraDb)
	votesDb := votes.New(agoraDb)
	activityDb := activity.New(agoraDb)

	m := metrics.New()
	engineConf := conviction.NewEngineConfig()
	engine := conviction.New(
		logger.PrefixedLogger{Prefix: "conviction"},
		engineConf,
		membersDb,
		proposalsDb,
		votesDb,
		activityDb,
		m,
	)

	listenAddr := os.Getenv("API_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	apiServer := api.New(engine, proposalsDb, activityDb, m, listenAddr)

	plugins := make([]aggregate.Plugin, 0)
	plugins = append(plugins,
		dbConf,
		engineConf,
		db,
		agoraDb,
		membersDb,
		proposalsDb,
		votesDb,
		activityDb,
		engine,
		apiServer,
	)

	a := aggregate.New(
		plugins,
	)

	err := a.Run()
	if err != nil {
		fmt.Println("error is", err)
		os.Exit(1)
	}
}
