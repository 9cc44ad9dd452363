package models

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

// ValidateStruct runs struct validation and wraps failures in ErrValidation.
func ValidateStruct(s interface{}) error {
	if err := Validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// MemoryRepo keeps events, rosters and vouchers in process memory. Events and
// rosters share one lock, vouchers and the code index another; when both are
// needed the event lock is always taken first.
type MemoryRepo struct {
	eventsMu sync.RWMutex
	events   map[uuid.UUID]*Event
	rosters  map[uuid.UUID]map[string]struct{}

	vouchersMu sync.RWMutex
	vouchers   map[uuid.UUID]*Voucher
	codes      map[string]uuid.UUID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		events:   make(map[uuid.UUID]*Event),
		rosters:  make(map[uuid.UUID]map[string]struct{}),
		vouchers: make(map[uuid.UUID]*Voucher),
		codes:    make(map[string]uuid.UUID),
	}
}

const (
	MongoDbName         = "supermoment"
	EventsColName       = "events"
	VouchersColName     = "vouchers"
	ParticipantsColName = "participants"
)

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	if dbName == "" {
		dbName = MongoDbName
	}
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

var (
	_ EventRepo   = (*MemoryRepo)(nil)
	_ VoucherRepo = (*MemoryRepo)(nil)
	_ EventRepo   = (*MongodbRepo)(nil)
	_ VoucherRepo = (*MongodbRepo)(nil)
)
