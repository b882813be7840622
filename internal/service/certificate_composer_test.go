package service

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"skillpath_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var certIDPattern = regexp.MustCompile(`^CERT-\d+-[A-Z0-9]{9}$`)

func fixedComposer() *CertificateComposer {
	c := NewCertificateComposer("https://api.example.com/")
	c.Now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }
	return c
}

func TestNewCertificateIDFormat(t *testing.T) {
	c := NewCertificateComposer("http://localhost")
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := c.NewCertificateID()
		assert.Regexp(t, certIDPattern, id)
		seen[id] = true
	}
	assert.Len(t, seen, 200)
}

func TestNewCertificateIDConsecutiveCallsDiffer(t *testing.T) {
	// 同一毫秒内连续生成也不能重复
	c := fixedComposer()
	for i := 0; i < 50; i++ {
		first := c.NewCertificateID()
		second := c.NewCertificateID()
		require.NotEqual(t, first, second)
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name                       string
		completed, total, skills   int
		wantRate, wantC, wantTotal int
	}{
		{"exact", 3, 4, 0, 75, 3, 4},
		{"rounds", 2, 3, 0, 67, 2, 3},
		{"total from skills", 2, 0, 4, 50, 2, 4},
		{"minimum one", 0, 0, 0, 0, 0, 1},
		{"clamped above", 9, 3, 0, 100, 3, 3},
		{"clamped below", -2, 5, 0, 0, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, c, total := CompletionRate(tt.completed, tt.total, tt.skills)
			assert.Equal(t, tt.wantRate, rate)
			assert.Equal(t, tt.wantC, c)
			assert.Equal(t, tt.wantTotal, total)
			assert.GreaterOrEqual(t, rate, 0)
			assert.LessOrEqual(t, rate, 100)
		})
	}
}

func TestCompose(t *testing.T) {
	c := fixedComposer()

	got, err := c.Compose(
		UserInfo{Name: "Ada <Lovelace>", Email: "ada@example.com"},
		CourseDetails{Domain: "Frontend", Level: "beginner", Skills: []string{"HTML", "CSS"}, TasksCompleted: 1},
	)

	require.NoError(t, err)
	assert.Regexp(t, certIDPattern, got.CertificateID)
	assert.Equal(t, 50, got.CompletionRate)
	assert.Equal(t, 2, got.TotalTasks)

	v := got.Verification
	assert.Equal(t, got.CertificateID, v.CertificateID)
	assert.Equal(t, "2024-03-15T10:30:00Z", v.IssuedDate)
	assert.Equal(t, "https://api.example.com/api/certificates/verify/"+got.CertificateID, v.VerificationURL)
	assert.Equal(t, []string{"HTML", "CSS"}, v.Skills)

	assert.Contains(t, got.Content, "Ada &lt;Lovelace&gt;")
	assert.Contains(t, got.Content, "March 15, 2024")
	assert.Contains(t, got.Content, got.CertificateID)
	assert.False(t, strings.Contains(got.Content, "<Lovelace>"))
}

func TestVerifyCertificate(t *testing.T) {
	id := "CERT-1700000000000-ABCDEFGHI"

	valid := VerifyCertificate(id, &model.VerificationRecord{CertificateID: id})
	assert.True(t, valid.IsValid)
	assert.NotNil(t, valid.VerifiedAt)

	other := VerifyCertificate(id, &model.VerificationRecord{CertificateID: "CERT-other"})
	assert.False(t, other.IsValid)
	assert.Nil(t, other.VerifiedAt)

	missing := VerifyCertificate(id, nil)
	assert.False(t, missing.IsValid)

	empty := VerifyCertificate("", &model.VerificationRecord{})
	assert.False(t, empty.IsValid)
}

func TestSignatureDetectsTampering(t *testing.T) {
	cert := &model.Certificate{
		ID:             "CERT-1-AAAAAAAAA",
		UserID:         7,
		Domain:         "Frontend",
		Level:          "beginner",
		CompletionRate: 80,
		Verification:   datatypes.NewJSONType(model.VerificationRecord{IssuedDate: "2024-03-15T10:30:00Z"}),
	}
	cert.Signature = SignCertificate("secret", cert)

	assert.True(t, VerifySignature("secret", cert))
	assert.False(t, VerifySignature("other-secret", cert))

	cert.CompletionRate = 100
	assert.False(t, VerifySignature("secret", cert))

	cert.Signature = "not-hex"
	assert.False(t, VerifySignature("secret", cert))
}
