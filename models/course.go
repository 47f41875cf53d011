package models

// Course üç yemek etabından birini tanımlar. Bağımsız yaşam döngüsü olan bir
// varlık değil, sabit sıralı bir mantıksal slot.
type Course string

const (
	CourseStarter Course = "starter" // Başlangıç
	CourseMain    Course = "main"    // Ana yemek
	CourseDessert Course = "dessert" // Tatlı
)

// AllCourses etapları sabit sıralarıyla döndürür. Eşitlik bozma ve raporlama
// her zaman bu sırayı kullanır.
func AllCourses() []Course {
	return []Course{CourseStarter, CourseMain, CourseDessert}
}

// Valid bilinen bir etap mı kontrol eder.
func (c Course) Valid() bool {
	switch c {
	case CourseStarter, CourseMain, CourseDessert:
		return true
	}
	return false
}
