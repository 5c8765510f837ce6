package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DeliveryStatusUUID identifies a seeded delivery status by its code.
func DeliveryStatusUUID(code string) uuid.UUID {
	return UUID("go-albums:delivery_status:" + strings.ToUpper(strings.TrimSpace(code)))
}

// ImageStatusUUID identifies a seeded image status by its code.
func ImageStatusUUID(code string) uuid.UUID {
	return UUID("go-albums:image_status:" + strings.ToUpper(strings.TrimSpace(code)))
}

// UploadItemUUID identifies a file inside an upload batch. The position keeps
// duplicate file names apart.
func UploadItemUUID(batchID uuid.UUID, position int, fileName string) uuid.UUID {
	return UUID("go-albums:upload_item:" + batchID.String() + ":" + strconv.Itoa(position) + ":" + strings.TrimSpace(fileName))
}
