package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateVoucher(ctx context.Context, voucher *Voucher) (*Voucher, error) {
	col, err := mdb.GetCollection(ctx, VouchersColName)
	if err != nil {
		return nil, err
	}
	stored := voucher.clone()
	if _, err := col.InsertOne(ctx, stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("error inserting voucher: %w", err)
	}
	return stored, nil
}

func (mdb *MongodbRepo) findVoucher(ctx context.Context, filter bson.M) (*Voucher, error) {
	col, err := mdb.GetCollection(ctx, VouchersColName)
	if err != nil {
		return nil, err
	}
	var voucher Voucher
	if err := col.FindOne(ctx, filter).Decode(&voucher); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding voucher: %w", err)
	}
	return &voucher, nil
}

func (mdb *MongodbRepo) GetVoucher(ctx context.Context, id uuid.UUID) (*Voucher, error) {
	return mdb.findVoucher(ctx, bson.M{"id": id})
}

func (mdb *MongodbRepo) GetVoucherByCode(ctx context.Context, code string) (*Voucher, error) {
	return mdb.findVoucher(ctx, bson.M{"code": code})
}

func (mdb *MongodbRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	col, err := mdb.GetCollection(ctx, VouchersColName)
	if err != nil {
		return false, err
	}
	count, err := col.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking voucher code: %w", err)
	}
	return count > 0, nil
}

func (mdb *MongodbRepo) ListVouchersByEvent(ctx context.Context, eventID uuid.UUID) ([]*Voucher, error) {
	col, err := mdb.GetCollection(ctx, VouchersColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding vouchers: %w", err)
	}
	vouchers := make([]*Voucher, 0)
	if err := cursor.All(ctx, &vouchers); err != nil {
		return nil, fmt.Errorf("error decoding vouchers: %w", err)
	}
	return vouchers, nil
}

func (mdb *MongodbRepo) UpdateVoucher(ctx context.Context, id uuid.UUID, patch *VoucherPatch) (*Voucher, error) {
	voucher, err := mdb.GetVoucher(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(voucher); err != nil {
		return nil, err
	}
	col, err := mdb.GetCollection(ctx, VouchersColName)
	if err != nil {
		return nil, err
	}
	res, err := col.ReplaceOne(ctx, bson.M{"id": id}, voucher)
	if err != nil {
		return nil, fmt.Errorf("error updating voucher: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return voucher, nil
}

// IncrementUsage bumps used_count only while it is below max_uses and flips
// the status to used in the same update once the limit is reached.
func (mdb *MongodbRepo) IncrementUsage(ctx context.Context, id uuid.UUID) (*Voucher, error) {
	col, err := mdb.GetCollection(ctx, VouchersColName)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"id":    id,
		"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"used_count": bson.M{"$add": bson.A{"$used_count", 1}}}}},
		{{Key: "$set", Value: bson.M{"status": bson.M{"$cond": bson.A{
			bson.M{"$gte": bson.A{"$used_count", "$max_uses"}},
			string(VoucherUsed),
			"$status",
		}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var voucher Voucher
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&voucher)
	if err == nil {
		return &voucher, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error incrementing voucher usage: %w", err)
	}
	if _, err := mdb.GetVoucher(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrUsageLimit
}

func (mdb *MongodbRepo) MarkExpired(ctx context.Context, id uuid.UUID) error {
	return mdb.setVoucherStatus(ctx, id, VoucherExpired)
}

func (mdb *MongodbRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return mdb.setVoucherStatus(ctx, id, VoucherUsed)
}

func (mdb *MongodbRepo) setVoucherStatus(ctx context.Context, id uuid.UUID, status VoucherStatus) error {
	col, err := mdb.GetCollection(ctx, VouchersColName)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("error updating voucher status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
