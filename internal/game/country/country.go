package country

import (
	"math/rand/v2"

	"github.com/glasnost-games/world-summit/internal/apperrors"
)

// Country 可分配的国家
type Country struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
	Code string `json:"code"`
}

// Pool 固定国家池，容量不小于房间人数上限
var Pool = []Country{
	{Name: "Russia", Flag: "🇷🇺", Code: "RU"},
	{Name: "USA", Flag: "🇺🇸", Code: "US"},
	{Name: "China", Flag: "🇨🇳", Code: "CN"},
	{Name: "Germany", Flag: "🇩🇪", Code: "DE"},
	{Name: "France", Flag: "🇫🇷", Code: "FR"},
	{Name: "United Kingdom", Flag: "🇬🇧", Code: "GB"},
	{Name: "Japan", Flag: "🇯🇵", Code: "JP"},
	{Name: "Italy", Flag: "🇮🇹", Code: "IT"},
	{Name: "Spain", Flag: "🇪🇸", Code: "ES"},
	{Name: "Canada", Flag: "🇨🇦", Code: "CA"},
}

// Assign 洗牌国家池并返回前 n 个国家
// n 超过池容量时返回 ErrInsufficientCountries（正常不可达，容量上限受房间限制）
func Assign(n int) ([]Country, error) {
	if n > len(Pool) {
		return nil, apperrors.ErrInsufficientCountries
	}

	shuffled := make([]Country, len(Pool))
	copy(shuffled, Pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n], nil
}
