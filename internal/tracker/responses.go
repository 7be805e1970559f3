package tracker

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kalambet/shopwatch/internal/search"
	"github.com/kalambet/shopwatch/internal/storage"
)

// Reply templates. All user-facing text is Traditional Chinese.

const (
	msgInvalidPrice = "價格格式錯誤，請輸入有效的數字金額"
	msgTrackFailed  = "設定商品追蹤時發生錯誤，請稍後再試"
	msgListFailed   = "查詢追蹤清單時發生錯誤，請稍後再試"

	msgNeedPrice = "請告訴我您想追蹤的目標價格\n\n" +
		"範例格式：\n" +
		"• iPhone 15 低於 25000 元時通知我\n" +
		"• 當 PS5 價格少於 12000 就提醒我\n\n" +
		"系統會自動過濾配件，只追蹤主商品價格！"

	msgNoTrackers = "您目前沒有任何商品追蹤\n\n" +
		"開始追蹤範例：\n" +
		"• iPhone 15 低於 25000 元時通知我\n" +
		"• 當 PS5 價格少於 12000 就提醒我\n\n" +
		"系統會自動過濾配件，只追蹤主商品！"
)

func trackCreatedReply(product string, target int) string {
	var b strings.Builder
	b.WriteString("追蹤設定成功！\n\n")
	fmt.Fprintf(&b, "商品：%s\n", product)
	fmt.Fprintf(&b, "目標價格：%s 以下\n", search.FormatNTD(target))
	b.WriteString("通知模式：低於目標價格時立即通知\n\n")
	return b.String()
}

func trackUpdatedReply(product string, oldTarget, newTarget int) string {
	var b strings.Builder
	b.WriteString("追蹤設定已更新！\n\n")
	fmt.Fprintf(&b, "商品：%s\n", product)
	fmt.Fprintf(&b, "價格調整：%s → %s\n", search.FormatNTD(oldTarget), search.FormatNTD(newTarget))
	b.WriteString("追蹤模式：低於目標價格時通知\n\n")
	return b.String()
}

// currentPriceAnalysis reports how the immediate search compares to the
// target: the good news when the target is already met, the gap otherwise.
func currentPriceAnalysis(agg *search.Aggregate, target int) string {
	var b strings.Builder
	price := agg.MinPrice
	if price <= target {
		b.WriteString("好消息！已找到符合條件的商品：\n")
		fmt.Fprintf(&b, "當前最低價：%s\n", search.FormatNTD(price))
		fmt.Fprintf(&b, "節省金額：%s\n", search.FormatNTD(target-price))
		fmt.Fprintf(&b, "最佳平台：%s\n", agg.Cheapest.Platform)
		fmt.Fprintf(&b, "立即購買：%s\n\n", agg.Cheapest.Link)
		b.WriteString("限時優惠，建議立即下單！")
	} else {
		gap := price - target
		b.WriteString("當前價格分析：\n")
		fmt.Fprintf(&b, "目前最低價：%s\n", search.FormatNTD(price))
		fmt.Fprintf(&b, "距離目標：%s\n", search.FormatNTD(gap))
		fmt.Fprintf(&b, "需要降價：%.1f%%\n\n", float64(gap)/float64(price)*100)
		b.WriteString("持續監控中，降價時立即通知您！")
	}
	return b.String()
}

func notFoundReply(product, filterNote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "找不到 %s 的相關主商品\n\n", product)
	if filterNote != "" {
		b.WriteString(filterNote + "\n\n")
	}
	b.WriteString("建議您：\n")
	b.WriteString("• 檢查商品名稱拼寫\n")
	b.WriteString("• 使用更通用的關鍵字\n")
	b.WriteString("• 嘗試品牌 + 型號的組合")
	return b.String()
}

func priceQueryReply(agg *search.Aggregate) string {
	var b strings.Builder
	cheapest := agg.Cheapest

	fmt.Fprintf(&b, "%s 比價結果：\n\n", agg.ProductName)
	b.WriteString("最佳選擇：\n")
	fmt.Fprintf(&b, "商品：%s\n", cheapest.Name)
	fmt.Fprintf(&b, "價格：%s\n", search.FormatNTD(cheapest.Price))
	fmt.Fprintf(&b, "平台：%s\n", cheapest.Platform)
	fmt.Fprintf(&b, "購買連結：%s\n\n", cheapest.Link)

	if agg.TotalResults > 1 {
		fmt.Fprintf(&b, "價格統計（%d 個相關商品）：\n", agg.TotalResults)
		fmt.Fprintf(&b, "最低價：%s\n", search.FormatNTD(agg.MinPrice))
		fmt.Fprintf(&b, "最高價：%s\n", search.FormatNTD(agg.MaxPrice))
		fmt.Fprintf(&b, "平均價：NT$%.0f\n\n", agg.AvgPrice)
	}

	if len(agg.Results) > 1 {
		b.WriteString("其他優質選擇：\n")
		limit := min(len(agg.Results), 3)
		for i := 1; i < limit; i++ {
			it := agg.Results[i]
			fmt.Fprintf(&b, "%d. %s\n", i+1, shorten(it.Name, 50))
			fmt.Fprintf(&b, "   %s (%s)\n", search.FormatNTD(it.Price), it.Platform)
		}
		b.WriteString("\n")
	}

	b.WriteString("想追蹤此商品？輸入：\n")
	fmt.Fprintf(&b, "「%s 低於 %d 元時通知我」\n\n", agg.ProductName, cheapest.Price)
	b.WriteString(agg.FilterNote)
	return b.String()
}

func trackerListReply(trackers []storage.Tracker) string {
	var b strings.Builder
	b.WriteString("您的商品追蹤清單\n")
	fmt.Fprintf(&b, "更新時間：%s\n\n", time.Now().Format("01/02 15:04"))
	fmt.Fprintf(&b, "進行中追蹤 (%d 項)：\n\n", len(trackers))

	for i, t := range trackers {
		fmt.Fprintf(&b, "#%d %s\n", i+1, t.ProductName)
		fmt.Fprintf(&b, "   目標：%s 以下\n", search.FormatNTD(t.TargetPrice))
		switch {
		case t.LastPrice == nil:
			b.WriteString("   狀態：等待價格檢查中...\n")
		case *t.LastPrice <= t.TargetPrice:
			fmt.Fprintf(&b, "   當前：%s (已達標！)\n", search.FormatNTD(*t.LastPrice))
		default:
			fmt.Fprintf(&b, "   當前：%s (還需降 %s)\n",
				search.FormatNTD(*t.LastPrice), search.FormatNTD(*t.LastPrice-t.TargetPrice))
		}
		if t.LastChecked != nil {
			fmt.Fprintf(&b, "   更新：%s\n", t.LastChecked.Format("01/02 15:04"))
		}
		b.WriteString("\n")
	}

	b.WriteString("想修改追蹤設定？重新輸入相同商品名稱即可更新")
	return b.String()
}

func settingsReply(status string, prefs storage.Preferences) string {
	var b strings.Builder
	b.WriteString("用戶偏好設定\n\n")
	b.WriteString(status)
	b.WriteString("當前設定：\n")
	if prefs.AllowAccessories {
		b.WriteString("• 配件過濾：關閉（允許配件）\n\n")
	} else {
		b.WriteString("• 配件過濾：開啟（只顯示主商品）\n\n")
	}
	b.WriteString("可用設定指令：\n")
	b.WriteString("• 「允許配件」- 搜尋結果包含配件\n")
	b.WriteString("• 「過濾配件」- 只顯示主商品（推薦）")
	return b.String()
}

func priceAlertReply(t storage.Tracker, agg *search.Aggregate) string {
	var b strings.Builder
	b.WriteString("降價通知！\n\n")
	fmt.Fprintf(&b, "商品：%s\n", t.ProductName)
	fmt.Fprintf(&b, "目標價格：%s\n", search.FormatNTD(t.TargetPrice))
	fmt.Fprintf(&b, "當前最低價：%s\n", search.FormatNTD(agg.MinPrice))
	fmt.Fprintf(&b, "節省金額：%s\n", search.FormatNTD(t.TargetPrice-agg.MinPrice))
	fmt.Fprintf(&b, "最佳平台：%s\n", agg.Cheapest.Platform)
	fmt.Fprintf(&b, "立即購買：%s\n\n", agg.Cheapest.Link)
	b.WriteString("建議盡快下單，價格可能隨時變動！")
	return b.String()
}

func shorten(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
