package intent

// All keyword and pattern tables live here so the classifier and the topic
// router consume a single source of truth instead of drifting copies.

// priceQueryKeywords trigger a price lookup.
var priceQueryKeywords = []string{
	"多少錢", "價格", "查價", "比價", "查詢", "搜尋",
	"賣多少", "現在多少", "目前價格", "市價", "行情",
	"值多少", "要花多少", "成本", "售價",
}

// trackingKeywords trigger a price-watch request.
var trackingKeywords = []string{
	"追蹤", "監控", "通知", "提醒", "關注", "盯著",
	"降價", "便宜", "打折", "特價", "優惠",
	"等", "等到", "到時候", "的話", "如果", "當",
}

// priceExpressionKeywords introduce a numeric threshold ("低於 25000").
var priceExpressionKeywords = []string{
	"低於", "少於", "小於", "不超過", "以下", "以內",
	"便宜到", "降到", "跌到", "掉到", "下降到",
	"不要超過", "最多", "頂多",
}

var settingsKeywords = []string{"設定", "偏好", "配件", "過濾"}

var listKeywords = []string{"清單", "列表", "我的追蹤"}

var helpKeywords = []string{"說明", "幫助", "help", "使用方法"}

// anaphoraKeywords mark a reference to the previously discussed product.
var anaphoraKeywords = []string{"這個", "它", "那個", "同樣"}

// cheaperHints and priceHints disambiguate the fuzzy fallback: a known product
// keyword plus one of these decides between a watch guess and a price guess.
var cheaperHints = []string{"便宜", "降", "低", "少", "打折"}
var priceHints = []string{"多少", "價格", "錢"}

// productKeywords are common consumer-electronics terms used by the fuzzy
// fallback when no intent keyword matched.
var productKeywords = []string{
	"iphone", "ipad", "macbook", "airpods", "apple",
	"samsung", "xiaomi", "oppo", "vivo", "huawei",
	"ps5", "ps4", "xbox", "switch", "nintendo",
	"viper", "razer", "logitech", "corsair",
	"手機", "筆電", "電腦", "平板", "耳機", "滑鼠", "鍵盤",
}

// productAliases maps colloquial names to the canonical product keyword.
// Longer aliases are substituted first by normalizeProductName.
var productAliases = map[string][]string{
	"iphone":  {"蘋果手機", "愛鳳", "i鳳", "蘋果機"},
	"airpods": {"蘋果耳機", "無線耳機", "airpod"},
	"ps5":     {"playstation 5", "playstation5", "ps5主機", "遊戲機"},
	"switch":  {"nintendo switch", "任天堂", "ns"},
	"macbook": {"蘋果筆電", "mac筆電", "macbook pro", "macbook air"},
	"viper":   {"viper v3pro", "viper v2pro", "viper v3", "viper v2"},
}

// nonShoppingIndicators short-circuit the topic router: a message containing
// any of these is answered with a polite refusal instead of being classified.
var nonShoppingIndicators = []string{
	"天氣", "新聞", "股票", "股市", "政治", "選舉", "運動", "比賽",
	"遊戲攻略", "電玩", "料理", "食譜", "做菜", "烹飪",
	"健康", "醫療", "看病", "醫生", "症狀", "疾病",
	"教育", "學習", "考試", "作業", "功課", "學校",
	"程式", "編程", "代碼", "coding", "python", "java",
	"數學", "物理", "化學", "生物", "科學", "歷史", "地理",
	"音樂", "歌曲", "歌詞", "電影", "影片", "電視", "追劇",
	"書籍", "小說", "詩詞", "文學", "作文", "寫作",
	"笑話", "故事", "閒聊", "你是誰", "你好嗎", "早安", "晚安", "謝謝", "再見", "拜拜",
}

// reviewKeywords score a message toward the product-review handler.
var reviewKeywords = []string{
	"評價", "評論", "好不好", "好用", "推薦", "建議", "分析", "優點", "缺點",
	"心得", "開箱", "值得買", "品質", "耐用", "商品資訊", "產品介紹", "規格",
	"特色", "功能", "怎麼樣", "怎樣", "好嗎", "評測", "測評", "使用心得",
	"用戶評價", "買家評價", "真實評價", "網友評價", "值不值得", "適合",
	"好壞", "優劣", "差異", "選擇",
}

// priceTopicKeywords score a message toward the price/tracking handler.
var priceTopicKeywords = []string{
	"價格", "多少錢", "比價", "追蹤", "監控", "通知", "降價", "便宜",
	"特價", "折扣", "優惠", "目標價", "低於", "售價", "報價", "賣多少",
	"現在什麼價", "幾元", "幾塊", "nt$", "成本", "定價", "市價", "行情",
	"價位", "預算", "貴不貴", "划算", "cp值", "性價比",
}

// reviewPatterns and pricePatterns are the high-confidence regular-expression
// forms of the two topics; a pattern hit outweighs any keyword count.
var reviewPatternSrcs = []string{
	`(.+)(?:的)?評[價論](?:如何|怎麼樣|怎樣)?`,
	`(.+)好不好[用買]?`,
	`(.+)值得買嗎?`,
	`(.+)推薦嗎?`,
	`(.+)怎麼樣`,
	`想?[買購](.+)`,
	`(.+)(?:跟|和|與)(.+)(?:哪個|那個)好`,
	`請?(?:分析|介紹|說明)(?:一下)?(.+)`,
	`(.+)(?:有什麼|有哪些)(?:優點|缺點)`,
	`(.+)適合(?:我|什麼人)?嗎?`,
}

var pricePatternSrcs = []string{
	`(.+)(?:的)?價[格錢](?:是)?(?:多少|幾元)?`,
	`(.+)(?:要)?多少錢`,
	`(.+)賣(?:多少|幾元)`,
	`查(?:詢)?(.+)(?:的)?價[格錢]`,
	`比價(.+)`,
	`(.+)現在(?:什麼)?價[格位]`,
	`追蹤(.+)(?:的)?(?:價格|降價)`,
	`(.+)(?:降價|特價|優惠)(?:了嗎|通知)`,
	`(.+)(?:在)?哪[裡裏](?:買)?(?:比較)?便宜`,
	`(.+)(?:貴不貴|划算嗎?)`,
}
