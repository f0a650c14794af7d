package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	Name            string          `gorm:"not null"                      json:"name"`
	Description     string          `gorm:"not null;default:''"           json:"description"`
	Price           decimal.Decimal `gorm:"type:numeric;not null"         json:"price"`
	Images          StringList      `                                     json:"images"`
	Category        string          `gorm:"index"                         json:"category"`
	AvailableColors StringList      `                                     json:"availableColors"`
	AvailableSizes  StringList      `                                     json:"availableSizes"`
	Published       bool            `gorm:"not null;default:false;index"  json:"published"`
	UploadTime      time.Time       `gorm:"not null"                      json:"uploadTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UploadTime.IsZero() {
		p.UploadTime = time.Now().UTC()
	}
	return nil
}

// CustomProduct is a per-order copy of a base product carrying the customer's design.
type CustomProduct struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"     json:"id"`
	BaseProductID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"baseProductId"`
	Name               string          `gorm:"not null"                 json:"name"`
	Description        string          `gorm:"not null;default:''"      json:"description"`
	Price              decimal.Decimal `gorm:"type:numeric;not null"    json:"price"`
	Images             StringList      `                                json:"images"`
	Category           string          `                                json:"category"`
	AvailableColors    StringList      `                                json:"availableColors"`
	AvailableSizes     StringList      `                                json:"availableSizes"`
	Published          bool            `gorm:"not null;default:false"   json:"published"`
	UploadTime         time.Time       `gorm:"not null"                 json:"uploadTime"`
	CustomText         string          `                                json:"customText"`
	CustomImage        string          `                                json:"customImage"`
	FinalDesignImageID *uuid.UUID      `gorm:"type:uuid"                json:"finalDesignImageId"`
}

func (p *CustomProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UploadTime.IsZero() {
		p.UploadTime = time.Now().UTC()
	}
	return nil
}

type DesignImage struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  *uuid.UUID     `gorm:"type:uuid;index"      json:"productId,omitempty"`
	ImageData  string         `gorm:"type:text;not null"   json:"imageData"`
	DesignData datatypes.JSON `                            json:"designData,omitempty"`
	CreatedAt  time.Time      `                            json:"createdAt"`
}

func (d *DesignImage) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Coupon struct {
	Code               string    `gorm:"primaryKey;size:64"      json:"code"`
	DiscountPercentage int       `gorm:"not null;check:discount_percentage >= 1 AND discount_percentage <= 100" json:"discountPercentage"`
	IsActive           bool      `gorm:"not null;default:true"   json:"isActive"`
	Description        string    `gorm:"not null;default:''"     json:"description"`
	CreatedAt          time.Time `                               json:"createdAt"`
	UpdatedAt          time.Time `                               json:"updatedAt"`
}
