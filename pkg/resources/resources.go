// Package resources maintains the per-user ingestible resource collections
// and the rule that at most one file and one website URL are active at a
// time. Activation is a single UPDATE so a crash can never leave two active
// entries of the same kind.
package resources

import (
	"context"
	"errors"
	"time"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/utils/storage"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("resource not found")

func AddFile(db *gorm.DB, userID uint, name, locator, fileType string) (*model.File, error) {
	file := model.File{
		UserID:     userID,
		Name:       name,
		URL:        locator,
		Type:       fileType,
		UploadedAt: time.Now(),
	}
	if err := db.Create(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func AddURL(db *gorm.DB, userID uint, url string) (*model.WebsiteURL, error) {
	entry := model.WebsiteURL{
		UserID:  userID,
		URL:     url,
		AddedAt: time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetActiveFile marks one file active and clears every sibling in the same
// statement. The row is resolved first and activation compares by primary
// key, so duplicate names can never leave two entries active.
func SetActiveFile(db *gorm.DB, userID uint, name string) error {
	var file model.File
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return db.Model(&model.File{}).Where("user_id = ?", userID).
		UpdateColumn("is_active", gorm.Expr("(id = ?)", file.ID)).Error
}

// SetActiveURL is the URL-kind counterpart of SetActiveFile. The two kinds
// never affect each other.
func SetActiveURL(db *gorm.DB, userID uint, url string) error {
	var entry model.WebsiteURL
	err := db.Where("user_id = ? AND url = ?", userID, url).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return db.Model(&model.WebsiteURL{}).Where("user_id = ?", userID).
		UpdateColumn("is_active", gorm.Expr("(id = ?)", entry.ID)).Error
}

func ActiveFile(db *gorm.DB, userID uint) (*model.File, error) {
	var file model.File
	err := db.Where("user_id = ? AND is_active = ?", userID, true).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func ActiveURL(db *gorm.DB, userID uint) (*model.WebsiteURL, error) {
	var entry model.WebsiteURL
	err := db.Where("user_id = ? AND is_active = ?", userID, true).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteFile removes the stored payload and then the database row. A payload
// missing from storage fails the whole delete; removing only the row would
// leave the user billed for bytes that still exist somewhere.
func DeleteFile(ctx context.Context, db *gorm.DB, store storage.Store, userID uint, name string) error {
	var file model.File
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := store.Delete(ctx, file.URL); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	return db.Delete(&file).Error
}

func DeleteURL(db *gorm.DB, userID uint, url string) error {
	res := db.Where("user_id = ? AND url = ?", userID, url).Delete(&model.WebsiteURL{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func ListFiles(db *gorm.DB, userID uint) ([]model.File, error) {
	var files []model.File
	err := db.Where("user_id = ?", userID).Order("uploaded_at DESC").Find(&files).Error
	return files, err
}

func ListURLs(db *gorm.DB, userID uint) ([]model.WebsiteURL, error) {
	var urls []model.WebsiteURL
	err := db.Where("user_id = ?", userID).Order("added_at DESC").Find(&urls).Error
	return urls, err
}
