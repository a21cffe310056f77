package user

import (
	"io"
	"log"
	"testing"

	"github.com/trezcool/chikoro/core"
	appfs "github.com/trezcool/chikoro/fs"
	logsvc "github.com/trezcool/chikoro/services/logger"
)

func TestPasswordPolicyViolation(t *testing.T) {
	commonPasswordsMu.Lock()
	commonPasswords = []string{"p@ssw0rd!", "password", "qwerty"}
	commonPasswordsMu.Unlock()

	tests := []struct {
		name  string
		pwd   string
		email string
		want  string
	}{
		{name: "too short", pwd: "Ab1!", want: pwdMinLenTag},
		{name: "whitespace", pwd: "Abc 123!xyz", want: pwdNoSpaceTag},
		{name: "numeric", pwd: "1234567890", want: pwdNotAllNumTag},
		{name: "no special", pwd: "Abcdef123", want: pwdComplexityTag},
		{name: "no upper", pwd: "abcdef12#", want: pwdComplexityTag},
		{name: "like the email", pwd: "Tendai.moyo1!", email: "tendai.moyo@school.co.zw", want: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd!", want: pwdNoCommonTag},
		{name: "common with substitutions", pwd: "P@$$w0rd", want: pwdNoCommonTag},
		{name: "valid", pwd: "Sup3r$ecret!", email: "tendai.moyo@school.co.zw", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passwordPolicyViolation(tt.pwd, tt.email); got != tt.want {
				t.Errorf("passwordPolicyViolation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadCommonPasswords(t *testing.T) {
	conf := core.NewConfig()
	LoadCommonPasswords(appfs.FS, logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf))

	commonPasswordsMu.RLock()
	n := len(commonPasswords)
	commonPasswordsMu.RUnlock()
	if n < 500 {
		t.Errorf("LoadCommonPasswords() loaded %d passwords, want at least 500", n)
	}

	for _, pwd := range []string{"Password1!", "P@$$w0rd", "Qwerty123!", "Zimbabwe1!", "Admin@123"} {
		if !isCommonPassword(pwd) {
			t.Errorf("isCommonPassword(%q) = false, want true", pwd)
		}
	}
	if isCommonPassword("Sup3r$ecret!") {
		t.Errorf("isCommonPassword(%q) = true, want false", "Sup3r$ecret!")
	}
}
