package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
// A missing key yields an empty string.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key.
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

// --- Round Helpers ---

// GetCurrentRound returns the current round number, 1 if no reset has happened yet.
func GetCurrentRound(db *gorm.DB) (int64, error) {
	valueStr, err := GetValue(db, CurrentRoundKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 1, nil
	}
	round, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", CurrentRoundKey, err)
	}
	return round, nil
}

// SetCurrentRound stores the current round number.
func SetCurrentRound(db *gorm.DB, round int64) error {
	return SetValue(db, CurrentRoundKey, strconv.FormatInt(round, 10))
}

// IncrementCurrentRound advances the round counter by one and returns the new value.
// The increment happens inside a single UPDATE, so concurrent callers each get a distinct round
// and no increment is lost even without serializable isolation.
func IncrementCurrentRound(db *gorm.DB) (int64, error) {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&Metadata{Key: CurrentRoundKey, Value: "1"}).Error
	if err != nil {
		return 0, fmt.Errorf("无法初始化元数据 '%s': %w", CurrentRoundKey, err)
	}

	result := db.Model(&Metadata{}).
		Where("key = ?", CurrentRoundKey).
		Update("value", gorm.Expr("CAST(CAST(value AS BIGINT) + 1 AS VARCHAR(255))"))
	if result.Error != nil {
		return 0, fmt.Errorf("无法递增元数据 '%s': %w", CurrentRoundKey, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("元数据 '%s' 不存在", CurrentRoundKey)
	}
	return GetCurrentRound(db)
}

// GetLastResetAt returns the time of the last round reset, zero if none.
func GetLastResetAt(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastResetAtKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastResetAtKey, err)
	}
	return t, nil
}

// SetLastReset records who reset the round and when.
func SetLastReset(db *gorm.DB, at time.Time, by string) error {
	if err := SetValue(db, LastResetAtKey, at.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return SetValue(db, LastResetByKey, by)
}
