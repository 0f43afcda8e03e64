package auth

import "fmt"

// クレデンシャル種別名。ログとメトリクスのラベルに使用する。
const (
	KindIdentifier       = "identifier"
	KindUsernamePassword = "username_password"
	KindFacebook         = "facebook"
	KindGoogle           = "google"
)

// Credential はユーザーを特定するための認証情報。
// リクエストごとに生成され、永続化されない。
// 実装はこのパッケージ内の型に限られる。
type Credential interface {
	// Kind はクレデンシャル種別名を返す。
	Kind() string
	credential()
}

// Identifier は内部ユーザーIDによるクレデンシャル。
type Identifier struct {
	ID string
}

// UsernamePassword はユーザー名とパスワードによるクレデンシャル。
type UsernamePassword struct {
	Username string
	Password string
}

// FacebookAccount はFacebookアカウントIDによるクレデンシャル。
type FacebookAccount struct {
	UniqueID string
}

// GoogleAccount はGoogleアカウントID（OpenID Connectのsub）によるクレデンシャル。
type GoogleAccount struct {
	UniqueID string
}

func (Identifier) Kind() string       { return KindIdentifier }
func (UsernamePassword) Kind() string { return KindUsernamePassword }
func (FacebookAccount) Kind() string  { return KindFacebook }
func (GoogleAccount) Kind() string    { return KindGoogle }

func (Identifier) credential()       {}
func (UsernamePassword) credential() {}
func (FacebookAccount) credential()  {}
func (GoogleAccount) credential()    {}

// String はパスワードを伏せた表現を返す。
func (c UsernamePassword) String() string {
	return fmt.Sprintf("UsernamePassword{Username:%q}", c.Username)
}

// kindOf はnilを含む任意のクレデンシャルの種別名を返す。
func kindOf(cred Credential) string {
	if cred == nil {
		return "none"
	}
	return cred.Kind()
}
