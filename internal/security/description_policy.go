// Package security はアプリケーションのセキュリティ機能を提供する。
//
// DescriptionPolicy はプロジェクトとタスクの説明文に含まれるマークアップを検査する。
// 説明文は入力されたまま保存・返却し、書き換えは行わない。
// HTMLとして表示する側でのエスケープを前提とし、ここでは許可リスト外のマークアップを含む入力を拒否する。
// 判定にはbluemondayの許可リストベースのポリシーを使用する。
package security

import (
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// DescriptionPolicy は説明文のマークアップ検査のインターフェースを定義する。
type DescriptionPolicy interface {
	// Allows は説明文が許可されたマークアップのみで構成されているかを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）以外の要素、
	// on*イベント属性やstyle属性、http/https/mailto以外のリンクを含む場合はfalseを返す。
	// &, <, ", ' などの記号を含むプレーンテキストは許可する。
	Allows(raw string) bool
}

// descriptionPolicy はDescriptionPolicyの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type descriptionPolicy struct {
	policy *bluemonday.Policy
}

// NewDescriptionPolicy はDescriptionPolicyの新しいインスタンスを生成する。
func NewDescriptionPolicy() *descriptionPolicy {
	p := bluemonday.NewPolicy()

	// script, iframe, style等は許可リストに含めないことで拒否される
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").Matching(regexp.MustCompile(`(?i)^(https?://|mailto:)`)).OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(false)

	return &descriptionPolicy{policy: p}
}

// Allows はポリシー適用前後で内容が変わらない場合に許可する。
// bluemondayは出力をHTMLエスケープするため、比較は双方をアンエスケープして行う。
func (d *descriptionPolicy) Allows(raw string) bool {
	if raw == "" {
		return true
	}
	return html.UnescapeString(d.policy.Sanitize(raw)) == html.UnescapeString(raw)
}
