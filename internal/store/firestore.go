package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the Firestore collection written by the web client.
const DefaultCollection = "pantryItems"

// firestoreItem mirrors the document layout the web client reads and writes.
type firestoreItem struct {
	Name           string    `firestore:"name"`
	Quantity       int       `firestore:"quantity"`
	ExpirationDate *string   `firestore:"expirationDate"`
	Category       string    `firestore:"category"`
	UserID         string    `firestore:"userId"`
	CreatedAt      time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time `firestore:"updatedAt,serverTimestamp"`
}

// FirestoreStore keeps pantry items as documents of one Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) Query(ctx context.Context, ownerID string) ([]models.PantryItem, error) {
	if ownerID == "" {
		return nil, ErrOwnerMissing
	}

	iter := s.client.Collection(s.collection).Where("userId", "==", ownerID).Documents(ctx)
	defer iter.Stop()

	items := make([]models.PantryItem, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query pantry items: %w", err)
		}

		var rec firestoreItem
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode pantry item %s: %w", doc.Ref.ID, err)
		}
		// Documents saved without a category read as the default one.
		if rec.Category == "" {
			rec.Category = models.DefaultCategory
		}
		items = append(items, models.PantryItem{
			ID:             doc.Ref.ID,
			UserID:         rec.UserID,
			Name:           rec.Name,
			Quantity:       rec.Quantity,
			ExpirationDate: rec.ExpirationDate,
			Category:       rec.Category,
			CreatedAt:      rec.CreatedAt,
			UpdatedAt:      rec.UpdatedAt,
		})
	}
	return items, nil
}

func (s *FirestoreStore) Create(ctx context.Context, fields Fields) (string, error) {
	if fields.UserID == "" {
		return "", ErrOwnerMissing
	}

	ref, _, err := s.client.Collection(s.collection).Add(ctx, firestoreItem{
		Name:           fields.Name,
		Quantity:       fields.Quantity,
		ExpirationDate: cloneDate(fields.ExpirationDate),
		Category:       fields.Category,
		UserID:         fields.UserID,
	})
	if err != nil {
		return "", fmt.Errorf("create pantry item: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Update(ctx context.Context, ownerID, id string, fields Fields) error {
	ref := s.client.Collection(s.collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		owned, err := s.ownedBy(tx, ref, ownerID)
		if err != nil {
			return err
		}
		if !owned {
			return ErrNotFound
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "name", Value: fields.Name},
			{Path: "quantity", Value: fields.Quantity},
			{Path: "expirationDate", Value: cloneDate(fields.ExpirationDate)},
			{Path: "category", Value: fields.Category},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update pantry item: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, ownerID, id string) error {
	ref := s.client.Collection(s.collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		owned, err := s.ownedBy(tx, ref, ownerID)
		if err != nil {
			return err
		}
		if !owned {
			return nil
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}

// ownedBy reports whether the document exists and belongs to ownerID.
func (s *FirestoreStore) ownedBy(tx *firestore.Transaction, ref *firestore.DocumentRef, ownerID string) (bool, error) {
	snap, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	owner, err := snap.DataAt("userId")
	if err != nil {
		return false, nil
	}
	uid, _ := owner.(string)
	return uid == ownerID, nil
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(s.collection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
