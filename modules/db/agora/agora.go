package agora

import (
	"context"

	a "agora-node/modules/aggregate"
	"agora-node/modules/config"
	"agora-node/modules/db"

	"go.mongodb.org/mongo-driver/bson"
)

type AgoraDb struct {
	*db.DbInstance
}

var _ a.Plugin = &AgoraDb{}

func New(d db.Db, dbConf *config.Config[db.DbConfig]) *AgoraDb {
	return &AgoraDb{db.NewDbInstance(d, dbConf)}
}

// Nuke drops every document in every collection. Test fixtures only.
func (db *AgoraDb) Nuke() error {
	ctx := context.Background()

	colsNames, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return err
	}

	for _, colName := range colsNames {
		_, err := db.Collection(colName).DeleteMany(ctx, bson.M{})
		if err != nil {
			return err
		}
	}

	return nil
}
