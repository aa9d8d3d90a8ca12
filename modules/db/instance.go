package db

import (
	"agora-node/lib/utils"
	a "agora-node/modules/aggregate"
	"agora-node/modules/config"

	"github.com/chebyrash/promise"
	"go.mongodb.org/mongo-driver/mongo"
)

type DbInstance struct {
	db   Db
	conf *config.Config[DbConfig]
	*mongo.Database
}

var _ a.Plugin = &DbInstance{}

func NewDbInstance(db Db, conf *config.Config[DbConfig]) *DbInstance {
	return &DbInstance{db: db, conf: conf}
}

// Init implements aggregate.Plugin.
func (d *DbInstance) Init() error {
	d.Database = d.db.Database(d.conf.Get().DbName)
	return nil
}

// Start implements aggregate.Plugin.
func (d *DbInstance) Start() *promise.Promise[any] {
	return utils.PromiseResolve[any](nil)
}

// Stop implements aggregate.Plugin.
func (d *DbInstance) Stop() error {
	return nil
}
