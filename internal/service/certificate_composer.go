package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"skillpath_backend/internal/model"
)

//go:embed templates/certificate.html
var certificateHTML string

var certificateTemplate = template.Must(template.New("certificate").Parse(certificateHTML))

const (
	certIDAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	certTokenLength = 9
)

// UserInfo 证书接收人
type UserInfo struct {
	Name  string
	Email string
}

// CourseDetails 证书中的课程信息，TotalTasks 为 0 时按技能数计算
type CourseDetails struct {
	Domain         string
	Level          string
	Skills         []string
	TasksCompleted int
	TotalTasks     int
}

// ComposedCertificate 组装结果，持久化由调用方负责
type ComposedCertificate struct {
	CertificateID  string
	Content        string
	Verification   model.VerificationRecord
	CompletionRate int
	TasksCompleted int
	TotalTasks     int
	IssuedAt       time.Time
}

// CertificateComposer 生成证书 ID、HTML 和验证记录。
// ID 由毫秒时间戳加随机串组成，不是密码学意义上的唯一，唯一性由主键约束兜底。
type CertificateComposer struct {
	BaseURL string
	Now     func() time.Time
	IntN    func(n int) int
}

func NewCertificateComposer(baseURL string) *CertificateComposer {
	return &CertificateComposer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Now:     time.Now,
		IntN:    rand.IntN,
	}
}

// NewCertificateID 格式 CERT-<毫秒时间戳>-<9 位大写字母数字>
func (c *CertificateComposer) NewCertificateID() string {
	var b strings.Builder
	b.WriteString("CERT-")
	b.WriteString(strconv.FormatInt(c.Now().UnixMilli(), 10))
	b.WriteByte('-')
	for i := 0; i < certTokenLength; i++ {
		b.WriteByte(certIDAlphabet[c.IntN(len(certIDAlphabet))])
	}
	return b.String()
}

// CompletionRate round(tasksCompleted/totalTasks*100)，totalTasks 缺省为技能数且至少为 1
func CompletionRate(tasksCompleted, totalTasks, skillsCount int) (rate, completed, total int) {
	total = totalTasks
	if total <= 0 {
		total = skillsCount
	}
	if total < 1 {
		total = 1
	}
	completed = tasksCompleted
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}
	rate = int(math.Round(float64(completed) / float64(total) * 100))
	return rate, completed, total
}

func (c *CertificateComposer) VerificationURL(certID string) string {
	return c.BaseURL + "/api/certificates/verify/" + certID
}

func (c *CertificateComposer) Compose(user UserInfo, course CourseDetails) (*ComposedCertificate, error) {
	issuedAt := c.Now().UTC()
	certID := c.NewCertificateID()
	rate, completed, total := CompletionRate(course.TasksCompleted, course.TotalTasks, len(course.Skills))
	skills := append([]string{}, course.Skills...)

	data := map[string]interface{}{
		"RecipientName":   user.Name,
		"RecipientEmail":  user.Email,
		"Domain":          course.Domain,
		"Level":           course.Level,
		"Skills":          skills,
		"CompletionRate":  rate,
		"TasksCompleted":  completed,
		"TotalTasks":      total,
		"CertificateID":   certID,
		"IssuedDate":      issuedAt.Format("January 2, 2006"),
		"VerificationURL": c.VerificationURL(certID),
	}

	var buf bytes.Buffer
	if err := certificateTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render certificate template: %w", err)
	}

	return &ComposedCertificate{
		CertificateID: certID,
		Content:       buf.String(),
		Verification: model.VerificationRecord{
			CertificateID:   certID,
			IssuedDate:      issuedAt.Format(time.RFC3339),
			VerificationURL: c.VerificationURL(certID),
			Skills:          skills,
			Domain:          course.Domain,
			CompletionRate:  rate,
		},
		CompletionRate: rate,
		TasksCompleted: completed,
		TotalTasks:     total,
		IssuedAt:       issuedAt,
	}, nil
}

// VerificationResult 验证结果
type VerificationResult struct {
	IsValid    bool       `json:"isValid"`
	Message    string     `json:"message"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

// VerifyCertificate 只比较 ID 与存储的验证记录是否一致，不检测内容篡改
func VerifyCertificate(certificateID string, record *model.VerificationRecord) VerificationResult {
	if certificateID == "" || record == nil {
		return VerificationResult{IsValid: false, Message: "Certificate ID or verification record missing"}
	}
	if certificateID != record.CertificateID {
		return VerificationResult{IsValid: false, Message: "Certificate ID does not match verification record"}
	}
	now := time.Now().UTC()
	return VerificationResult{IsValid: true, Message: "Certificate is valid", VerifiedAt: &now}
}

func signaturePayload(cert *model.Certificate) string {
	v := cert.Verification.Data()
	return strings.Join([]string{
		cert.ID,
		strconv.FormatUint(uint64(cert.UserID), 10),
		strings.ToLower(cert.Domain),
		cert.Level,
		strconv.Itoa(cert.CompletionRate),
		v.IssuedDate,
	}, "|")
}

// SignCertificate HMAC-SHA256 签名，覆盖证书的关键字段
func SignCertificate(secret string, cert *model.Certificate) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signaturePayload(cert)))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret string, cert *model.Certificate) bool {
	expected, err := hex.DecodeString(SignCertificate(secret, cert))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(cert.Signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}
