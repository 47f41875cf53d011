package turkishsearch

import "strings"

// Türkçe büyük/küçük harf dönüşümü SQL lower() ile uyuşmaz (İ/ı sorunu).
// Bu yüzden hem sütun hem arama terimi aynı karakter tablosuyla normalize
// edilerek karşılaştırılır.
var replacer = strings.NewReplacer(
	"İ", "i", "I", "ı",
	"Ğ", "ğ", "Ü", "ü", "Ş", "ş", "Ö", "ö", "Ç", "ç",
)

// Normalize arama terimini küçük harfe ve Türkçe karakter tablosuna indirger.
func Normalize(term string) string {
	return strings.ToLower(replacer.Replace(strings.TrimSpace(term)))
}

// SQLFilter verilen sütun için büyük/küçük harf duyarsız LIKE filtresi üretir.
// Dönen fragment WHERE koşuluna, args sorgu argümanlarına eklenir.
func SQLFilter(column, term string) (string, []interface{}) {
	normalized := Normalize(term)
	return "lower(" + column + ") LIKE ?", []interface{}{"%" + normalized + "%"}
}
