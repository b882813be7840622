package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// VerificationRecord 证书验证所需的数据快照
type VerificationRecord struct {
	CertificateID   string   `json:"certificateId"`
	IssuedDate      string   `json:"issuedDate"`
	VerificationURL string   `json:"verificationUrl"`
	Skills          []string `json:"skills"`
	Domain          string   `json:"domain"`
	CompletionRate  int      `json:"completionRate"`
}

// Certificate 证书只会被吊销，不会被物理删除
// swagger:model Certificate
type Certificate struct {
	ID               string                                 `gorm:"primaryKey;size:40" json:"certificateId"`
	UserID           uint                                   `gorm:"index;not null" json:"userId"`
	ActiveKey        *string                                `gorm:"size:191;uniqueIndex" json:"-"`
	RecipientName    string                                 `gorm:"size:100" json:"recipientName"`
	RecipientEmail   string                                 `gorm:"size:100" json:"recipientEmail"`
	Domain           string                                 `gorm:"size:100;index" json:"domain"`
	Level            string                                 `gorm:"size:32" json:"level"`
	Skills           datatypes.JSONSlice[string]            `json:"skills"`
	CompletionRate   int                                    `json:"completionRate"`
	TasksCompleted   int                                    `json:"tasksCompleted"`
	TotalTasks       int                                    `json:"totalTasks"`
	Content          string                                 `gorm:"type:longtext" json:"content,omitempty"`
	Verification     datatypes.JSONType[VerificationRecord] `json:"verification"`
	Signature        string                                 `gorm:"size:64" json:"-"`
	DownloadCount    int                                    `gorm:"default:0" json:"downloadCount"`
	LastDownloadedAt *time.Time                             `json:"lastDownloadedAt,omitempty"`
	ImageURL         string                                 `gorm:"size:255" json:"imageUrl,omitempty"`
	IsRevoked        bool                                   `gorm:"default:false" json:"isRevoked"`
	RevokedAt        *time.Time                             `json:"revokedAt,omitempty"`
	IssuedAt         time.Time                              `json:"issuedAt"`
	CreatedAt        time.Time                              `json:"createdAt"`
	UpdatedAt        time.Time                              `json:"updatedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// CertificateActiveKey 有效证书的唯一键，同一用户同一领域只能有一张未吊销的证书
func CertificateActiveKey(userID uint, domain string) string {
	return fmt.Sprintf("%d:%s", userID, strings.ToLower(strings.TrimSpace(domain)))
}
