package matching

// MatchError eşleştirme motorunun ölümcül hataları. Bu hatalar girdinin hiçbir
// geçerli plan üretemeyeceğini gösterir ve herhangi bir durum değişikliğinden
// önce işlemi durdurur.
type MatchError string

func (e MatchError) Error() string { return string(e) }

const (
	// ErrTooFewParties 3'ten az aktif parti ile etap ataması yapılamaz:
	// her etabın en az bir ev sahibine ve başka yerde en az bir misafire
	// ihtiyacı vardır.
	ErrTooFewParties MatchError = "eşleştirme için en az 3 aktif parti gerekli"

	// ErrInsufficientCapacity en az bir etapta toplam ev sahibi kapasitesi,
	// o etapta ağırlanması gereken misafir kişi sayısının altında.
	ErrInsufficientCapacity MatchError = "ev sahibi kapasitesi misafir sayısı için yetersiz"

	// ErrUnknownCourse atama listesinde tanınmayan bir etap değeri var.
	ErrUnknownCourse MatchError = "bilinmeyen etap değeri"
)
