package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"sofra.link/configs/configsdatabase"
	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/pkg/matching"
	"sofra.link/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CascadeServiceError özel servis hataları
type CascadeServiceError string

func (e CascadeServiceError) Error() string { return string(e) }

const (
	ErrCascadeUnknownKind CascadeServiceError = "bilinmeyen mutasyon türü"
	ErrCascadeApplyFailed CascadeServiceError = "mutasyon uygulanamadı"
)

// CascadeKind yayınlanmış bir plan üzerindeki mutasyon türleri.
type CascadeKind string

const (
	CascadeGuestDropout  CascadeKind = "guest_dropout"
	CascadeHostDropout   CascadeKind = "host_dropout"
	CascadeResignHost    CascadeKind = "resign_host"
	CascadeAddressChange CascadeKind = "address_change"
	CascadeReassign      CascadeKind = "reassign"
	CascadeTransferHost  CascadeKind = "transfer_host"
	CascadePromoteHost   CascadeKind = "promote_host"
	CascadeSplitParty    CascadeKind = "split"
)

// CascadeMutation her mutasyon türü yalnızca kendi ihtiyaç duyduğu alanları
// taşıyan ayrı bir varyanttır; eksik alan doğrulaması varyant içinde yapılır.
type CascadeMutation interface {
	Kind() CascadeKind
	validate() []string
}

// GuestDropout parti etkinlikten tamamen çekildi, ev sahipliği yapmıyordu.
type GuestDropout struct {
	PartyID uint `json:"party_id"`
}

func (GuestDropout) Kind() CascadeKind { return CascadeGuestDropout }
func (m GuestDropout) validate() []string {
	if m.PartyID == 0 {
		return []string{"party_id zorunludur"}
	}
	return nil
}

// HostDropout parti etkinlikten tamamen çekildi; ev sahipliği dahil tüm
// kayıtları temizlenir, misafirleri yersiz kalır.
type HostDropout struct {
	PartyID uint `json:"party_id"`
}

func (HostDropout) Kind() CascadeKind { return CascadeHostDropout }
func (m HostDropout) validate() []string {
	if m.PartyID == 0 {
		return []string{"party_id zorunludur"}
	}
	return nil
}

// ResignHost parti yalnızca ev sahipliğinden çekildi, misafir olarak devam
// ediyor.
type ResignHost struct {
	PartyID uint `json:"party_id"`
}

func (ResignHost) Kind() CascadeKind { return CascadeResignHost }
func (m ResignHost) validate() []string {
	if m.PartyID == 0 {
		return []string{"party_id zorunludur"}
	}
	return nil
}

// AddressChange ev sahibinin adresi değişti; zarf hedefleri yerinde
// güncellenir, pairingler değişmez.
type AddressChange struct {
	PartyID     uint   `json:"party_id"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
}

func (AddressChange) Kind() CascadeKind { return CascadeAddressChange }
func (m AddressChange) validate() []string {
	var errs []string
	if m.PartyID == 0 {
		errs = append(errs, "party_id zorunludur")
	}
	if m.Street == "" {
		errs = append(errs, "adres değişikliği için sokak zorunludur")
	}
	return errs
}

// Reassign bir misafiri bir etap için mevcut ev sahibinden belirtilen yeni
// ev sahibine taşır. Eski zarf silinir ve yeni ev sahibinin adresiyle
// zamanlanmış yenisi aynı mutasyon içinde üretilir.
type Reassign struct {
	PartyID        uint          `json:"party_id"`
	Course         models.Course `json:"course"`
	NewHostPartyID uint          `json:"new_host_party_id"`
}

func (Reassign) Kind() CascadeKind { return CascadeReassign }
func (m Reassign) validate() []string {
	var errs []string
	if m.PartyID == 0 {
		errs = append(errs, "party_id zorunludur")
	}
	if !m.Course.Valid() {
		errs = append(errs, fmt.Sprintf("geçersiz etap %q", m.Course))
	}
	if m.NewHostPartyID == 0 {
		errs = append(errs, "new_host_party_id zorunludur")
	}
	if m.NewHostPartyID != 0 && m.NewHostPartyID == m.PartyID {
		errs = append(errs, "parti kendi kendine atanamaz")
	}
	return errs
}

// TransferHost ev sahipliği görevini A partisinden B partisine devreder.
type TransferHost struct {
	FromPartyID uint            `json:"from_party_id"`
	ToPartyID   uint            `json:"to_party_id"`
	Courses     []models.Course `json:"courses"`
}

func (TransferHost) Kind() CascadeKind { return CascadeTransferHost }
func (m TransferHost) validate() []string {
	var errs []string
	if m.FromPartyID == 0 || m.ToPartyID == 0 {
		errs = append(errs, "from_party_id ve to_party_id zorunludur")
	}
	if m.FromPartyID != 0 && m.FromPartyID == m.ToPartyID {
		errs = append(errs, "devreden ve devralan aynı parti olamaz")
	}
	if len(m.Courses) == 0 {
		errs = append(errs, "en az bir etap belirtilmelidir")
	}
	for _, c := range m.Courses {
		if !c.Valid() {
			errs = append(errs, fmt.Sprintf("geçersiz etap %q", c))
		}
	}
	return errs
}

// PromoteHost bir misafiri henüz ev sahipliği yapmadığı bir etap için ev
// sahibine dönüştürür; istenirse verilen misafir listesi hemen oturtulur.
type PromoteHost struct {
	PartyID       uint          `json:"party_id"`
	Course        models.Course `json:"course"`
	GuestPartyIDs []uint        `json:"guest_party_ids,omitempty"`
}

func (PromoteHost) Kind() CascadeKind { return CascadePromoteHost }
func (m PromoteHost) validate() []string {
	var errs []string
	if m.PartyID == 0 {
		errs = append(errs, "party_id zorunludur")
	}
	if !m.Course.Valid() {
		errs = append(errs, fmt.Sprintf("geçersiz etap %q", m.Course))
	}
	for _, g := range m.GuestPartyIDs {
		if g == m.PartyID {
			errs = append(errs, "parti kendi misafiri olamaz")
		}
	}
	return errs
}

// SplitParty iki kişilik bir parti iki bağımsız partiye bölünür; yeni parti
// yersiz olarak raporlanır, yeniden oturtulması gerekir.
type SplitParty struct {
	PartyID  uint   `json:"party_id"`
	NewName  string `json:"new_name"`
	NewEmail string `json:"new_email"`
}

func (SplitParty) Kind() CascadeKind { return CascadeSplitParty }
func (m SplitParty) validate() []string {
	var errs []string
	if m.PartyID == 0 {
		errs = append(errs, "party_id zorunludur")
	}
	if m.NewName == "" {
		errs = append(errs, "yeni parti adı zorunludur")
	}
	return errs
}

// CascadeResult bir mutasyonun yapısal etkisinin özeti. Yersiz kalan
// misafirler hata değildir: çağıran elle veya yeniden eşleştirmeyle oturtur.
type CascadeResult struct {
	Kind    CascadeKind `json:"kind"`
	PlanID  uint        `json:"plan_id"`
	Success bool        `json:"success"`

	EnvelopesCancelled int64 `json:"envelopes_cancelled"`
	EnvelopesCreated   int64 `json:"envelopes_created"`
	EnvelopesUpdated   int64 `json:"envelopes_updated"`
	PairingsRemoved    int64 `json:"pairings_removed"`
	PairingsCreated    int64 `json:"pairings_created"`
	AssignmentsRemoved int64 `json:"assignments_removed"`
	AssignmentsCreated int64 `json:"assignments_created"`

	UnplacedPartyIDs []uint   `json:"unplaced_party_ids"`
	Errors           []string `json:"errors"`
}

// ICascadeService yayınlanmış plan üzerinde tekil onarım mutasyonları için
// arayüz. Hiçbir mutasyon tam yeniden eşleştirme tetiklemez; etki alanı
// hedeflenen kayıtlarla sınırlıdır.
type ICascadeService interface {
	Apply(ctx context.Context, planID uint, mutation CascadeMutation) (*CascadeResult, error)
}

// CascadeService ICascadeService'in GORM transaction'ları üzerine kurulu
// implementasyonu. Her mutasyon tek transaction içinde uygulanır ve plan
// sürümünü iyimser kilitle artırır; eşzamanlı ikinci mutasyon
// ErrVersionConflict ile geri çevrilir.
type CascadeService struct {
	planRepo  repositories.IPlanRepository
	eventRepo repositories.IEventRepository
	db        *gorm.DB
	travel    matching.TravelEstimator
}

// NewCascadeService yeni bir CascadeService örneği oluşturur.
func NewCascadeService() ICascadeService {
	return &CascadeService{
		planRepo:  repositories.NewPlanRepository(),
		eventRepo: repositories.NewEventRepository(),
		db:        configsdatabase.GetDB(),
		travel:    matching.NoTravel{},
	}
}

// NewCascadeServiceWith bağımlılıkları dışarıdan alan kurucu.
func NewCascadeServiceWith(db *gorm.DB, travel matching.TravelEstimator) *CascadeService {
	if travel == nil {
		travel = matching.NoTravel{}
	}
	return &CascadeService{
		planRepo:  repositories.NewPlanRepositoryTx(db),
		eventRepo: repositories.NewEventRepositoryTx(db),
		db:        db,
		travel:    travel,
	}
}

// Apply mutasyonu doğrular ve tek transaction içinde uygular. Doğrulama
// hataları sonucun Errors listesinde döner ve hiçbir durum değişikliği
// yapılmaz; kalıcılık hataları error olarak döner ve transaction geri alınır.
func (s *CascadeService) Apply(ctx context.Context, planID uint, mutation CascadeMutation) (*CascadeResult, error) {
	result := &CascadeResult{Kind: mutation.Kind(), PlanID: planID}

	if errs := mutation.validate(); len(errs) > 0 {
		result.Errors = errs
		return result, nil
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMatchPlanNotFound
		}
		return nil, err
	}
	if plan.Status == models.PlanStatusSuperseded {
		return nil, ErrMatchPlanSuperseded
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		planRepoTx := repositories.NewPlanRepositoryTx(tx)
		if err := planRepoTx.BumpVersion(ctx, plan.ID, plan.Version); err != nil {
			return err
		}

		c := &cascadeTx{
			ctx:        ctx,
			plan:       plan,
			partyRepo:  repositories.NewPartyRepositoryTx(tx),
			assignRepo: repositories.NewAssignmentRepositoryTx(tx),
			pairRepo:   repositories.NewPairingRepositoryTx(tx),
			envRepo:    repositories.NewEnvelopeRepositoryTx(tx),
			blockRepo:  repositories.NewBlockedPairRepositoryTx(tx),
			eventRepo:  repositories.NewEventRepositoryTx(tx),
			travel:     s.travel,
			result:     result,
		}

		switch m := mutation.(type) {
		case GuestDropout:
			return c.guestDropout(m)
		case HostDropout:
			return c.hostDropout(m)
		case ResignHost:
			return c.resignHost(m)
		case AddressChange:
			return c.addressChange(m)
		case Reassign:
			return c.reassign(m)
		case TransferHost:
			return c.transferHost(m)
		case PromoteHost:
			return c.promoteHost(m)
		case SplitParty:
			return c.splitParty(m)
		default:
			return ErrCascadeUnknownKind
		}
	})
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrVersionConflict) {
			return nil, txErr
		}
		if errors.Is(txErr, errValidation) {
			// Doğrulama hatası transaction'ı geri aldı; sonuç listesiyle döner.
			result.Success = false
			resetCounts(result)
			return result, nil
		}
		configslog.Log.Error("Cascade mutasyonu başarısız",
			zap.Uint("plan_id", planID), zap.String("kind", string(mutation.Kind())), zap.Error(txErr))
		return nil, fmt.Errorf("%w: %v", ErrCascadeApplyFailed, txErr)
	}

	result.Success = true
	configslog.SLog.Infof("Cascade uygulandı: plan %d, tür %s, %d zarf iptal, %d pairing silindi, %d yersiz parti",
		planID, mutation.Kind(), result.EnvelopesCancelled, result.PairingsRemoved, len(result.UnplacedPartyIDs))
	return result, nil
}

// errValidation doğrulama hatalarının transaction'ı geri alması için işaret
// hatası; mesajlar result.Errors içinde taşınır.
var errValidation = errors.New("cascade doğrulama hatası")

func resetCounts(r *CascadeResult) {
	r.EnvelopesCancelled, r.EnvelopesCreated, r.EnvelopesUpdated = 0, 0, 0
	r.PairingsRemoved, r.PairingsCreated = 0, 0
	r.AssignmentsRemoved, r.AssignmentsCreated = 0, 0
	r.UnplacedPartyIDs = nil
}

// cascadeTx tek bir mutasyonun transaction kapsamındaki çalışma bağlamı.
type cascadeTx struct {
	ctx        context.Context
	plan       *models.MatchPlan
	partyRepo  repositories.IPartyRepository
	assignRepo repositories.IAssignmentRepository
	pairRepo   repositories.IPairingRepository
	envRepo    repositories.IEnvelopeRepository
	blockRepo  repositories.IBlockedPairRepository
	eventRepo  repositories.IEventRepository
	travel     matching.TravelEstimator
	result     *CascadeResult
}

func (c *cascadeTx) fail(msg string) error {
	c.result.Errors = append(c.result.Errors, msg)
	return errValidation
}

func (c *cascadeTx) loadParty(partyID uint) (*models.Party, error) {
	party, err := c.partyRepo.FindByID(c.ctx, partyID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, c.fail(fmt.Sprintf("parti %d bulunamadı", partyID))
		}
		return nil, err
	}
	if party.EventID != c.plan.EventID {
		return nil, c.fail(fmt.Sprintf("parti %d bu etkinliğe ait değil", partyID))
	}
	return party, nil
}

// guestsOf ev sahibine oturan misafirlerin parti kimliklerini döner.
func (c *cascadeTx) guestsOf(hostPartyID uint) ([]uint, error) {
	pairings, err := c.pairRepo.FindByHost(c.ctx, c.plan.ID, hostPartyID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(pairings))
	var ids []uint
	for _, p := range pairings {
		if !seen[p.GuestPartyID] {
			seen[p.GuestPartyID] = true
			ids = append(ids, p.GuestPartyID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// planConfig güncel etkinlik yapılandırmasından motor ayarlarını kurar.
// Yalnızca zarf üreten mutasyonlar (transfer, promote) çağırır.
func (c *cascadeTx) planConfig() (matching.PlanConfig, error) {
	event, err := c.eventRepo.FindByID(c.ctx, c.plan.EventID)
	if err != nil {
		return matching.PlanConfig{}, err
	}
	cfg := matching.ConfigFromEvent(event.Detail, event.Overrides)
	cfg.Travel = c.travel
	return cfg, nil
}

func (c *cascadeTx) newEnvelope(cfg matching.PlanConfig, party models.Party, host models.Party, course models.Course, isHost bool) models.Envelope {
	travelMinutes := 0
	if !isHost && cfg.DistanceAdjust && cfg.Travel != nil {
		travelMinutes = cfg.Travel.TravelMinutes(party, host)
	}
	env := models.Envelope{
		PlanID:          c.plan.ID,
		PartyID:         party.ID,
		Course:          course,
		Key:             uuid.NewString(),
		IsHost:          isHost,
		HostPartyID:     host.ID,
		DestStreet:      host.Street,
		DestHouseNumber: host.HouseNumber,
		Teasing:         host.Teasing,
		Clue1:           host.Clue1,
		Clue2:           host.Clue2,
		Status:          models.EnvelopeStatusActive,
	}
	var override *matching.TimingOverride
	if o, ok := cfg.Overrides[course]; ok {
		override = &o
	}
	schedule := matching.DeriveSchedule(cfg.CourseStarts[course], cfg.Timing, override, travelMinutes)
	schedule.ApplyTo(&env)
	return env
}

// guestDropout yalnızca misafir tarafını temizler: partinin aktif zarfları
// iptal edilir, misafir olduğu pairingler silinir. Boşalan koltuklar
// otomatik doldurulmaz.
func (c *cascadeTx) guestDropout(m GuestDropout) error {
	if _, err := c.loadParty(m.PartyID); err != nil {
		return err
	}
	cancelled, err := c.envRepo.CancelActiveByParty(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.EnvelopesCancelled += cancelled

	removed, err := c.pairRepo.DeleteByGuest(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.PairingsRemoved += removed
	return nil
}

// hostDropout partinin hem ev sahibi hem misafir izlerini temizler ve
// misafirlerini yersiz olarak raporlar.
func (c *cascadeTx) hostDropout(m HostDropout) error {
	if _, err := c.loadParty(m.PartyID); err != nil {
		return err
	}
	unplaced, err := c.guestsOf(m.PartyID)
	if err != nil {
		return err
	}

	cancelled, err := c.envRepo.CancelActiveByParty(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.EnvelopesCancelled += cancelled

	cancelled, err = c.envRepo.CancelActiveGuestsOfHost(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.EnvelopesCancelled += cancelled

	removed, err := c.pairRepo.DeleteByHost(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.PairingsRemoved += removed

	removed, err = c.pairRepo.DeleteByGuest(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.PairingsRemoved += removed

	aRemoved, err := c.assignRepo.DeleteByPlanAndParty(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.AssignmentsRemoved += aRemoved

	c.result.UnplacedPartyIDs = unplaced
	return nil
}

// resignHost yalnızca ev sahipliğini bırakır: partinin kendi ev sahibi zarfı
// ve misafirlerinin zarfları iptal edilir, ev sahibi olduğu pairingler ve
// ataması silinir. Misafir olduğu kayıtlar korunur.
func (c *cascadeTx) resignHost(m ResignHost) error {
	if _, err := c.loadParty(m.PartyID); err != nil {
		return err
	}
	unplaced, err := c.guestsOf(m.PartyID)
	if err != nil {
		return err
	}

	cancelled, err := c.envRepo.CancelActiveHostEnvelope(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.EnvelopesCancelled += cancelled

	cancelled, err = c.envRepo.CancelActiveGuestsOfHost(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.EnvelopesCancelled += cancelled

	removed, err := c.pairRepo.DeleteByHost(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.PairingsRemoved += removed

	aRemoved, err := c.assignRepo.DeleteByPlanAndParty(c.ctx, c.plan.ID, m.PartyID)
	if err != nil {
		return err
	}
	c.result.AssignmentsRemoved += aRemoved

	c.result.UnplacedPartyIDs = unplaced
	return nil
}

// addressChange parti kaydını ve ona işaret eden tüm aktif zarfların hedef
// alanlarını yerinde günceller. Ev sahibi kimliği değişmediği için pairingler
// dokunulmaz kalır.
func (c *cascadeTx) addressChange(m AddressChange) error {
	party, err := c.loadParty(m.PartyID)
	if err != nil {
		return err
	}
	party.Street = m.Street
	party.HouseNumber = m.HouseNumber
	if err := c.partyRepo.Update(c.ctx, party); err != nil {
		return err
	}

	updated, err := c.envRepo.UpdateDestinationByHost(c.ctx, c.plan.ID, party.ID, *party)
	if err != nil {
		return err
	}
	c.result.EnvelopesUpdated += updated
	return nil
}

// reassign bir misafiri bir etap için yeni ev sahibine taşır. Eski pairing ve
// zarf silinir; yeni pairing ile yeni ev sahibinin adresini taşıyan zamanlı
// zarf birlikte yazılır.
func (c *cascadeTx) reassign(m Reassign) error {
	party, err := c.loadParty(m.PartyID)
	if err != nil {
		return err
	}
	newHost, err := c.loadParty(m.NewHostPartyID)
	if err != nil {
		return err
	}
	if !newHost.IsActive() {
		return c.fail(fmt.Sprintf("yeni ev sahibi %d iptal edilmiş", newHost.ID))
	}

	if _, err := c.assignRepo.FindByPlanPartyCourse(c.ctx, c.plan.ID, newHost.ID, m.Course); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.fail(fmt.Sprintf("parti %d %s etabında ev sahibi değil", newHost.ID, m.Course))
		}
		return err
	}

	blocked, err := c.blockRepo.FindAllByEvent(c.ctx, c.plan.EventID)
	if err != nil {
		return err
	}
	for _, b := range blocked {
		if b.Matches(party.ID, newHost.ID) {
			return c.fail(fmt.Sprintf("partiler %d ve %d engelli çift", party.ID, newHost.ID))
		}
	}

	old, err := c.pairRepo.FindByGuestAndCourse(c.ctx, c.plan.ID, party.ID, m.Course)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.fail(fmt.Sprintf("parti %d %s etabında oturtulmamış", party.ID, m.Course))
		}
		return err
	}
	if old.HostPartyID == newHost.ID {
		return c.fail("parti zaten bu ev sahibinde oturuyor")
	}

	removed, err := c.pairRepo.DeleteByGuestAndCourse(c.ctx, c.plan.ID, party.ID, m.Course)
	if err != nil {
		return err
	}
	c.result.PairingsRemoved += removed

	deleted, err := c.envRepo.DeleteByPartyAndCourse(c.ctx, c.plan.ID, party.ID, m.Course)
	if err != nil {
		return err
	}
	c.result.EnvelopesCancelled += deleted

	if err := c.pairRepo.Create(c.ctx, &models.Pairing{
		PlanID:       c.plan.ID,
		Course:       m.Course,
		HostPartyID:  newHost.ID,
		GuestPartyID: party.ID,
	}); err != nil {
		return err
	}
	c.result.PairingsCreated++

	cfg, err := c.planConfig()
	if err != nil {
		return err
	}
	env := c.newEnvelope(cfg, *party, *newHost, m.Course, false)
	if err := c.envRepo.Create(c.ctx, &env); err != nil {
		return err
	}
	c.result.EnvelopesCreated++
	return nil
}

// transferHost ev sahipliği görevini A'dan B'ye devreder: atamalar B altında
// yeniden yazılır, misafir pairingleri ve zarf hedefleri B'ye yönlendirilir,
// A'nın ev sahibi zarfı iptal edilip B için yenisi üretilir.
func (c *cascadeTx) transferHost(m TransferHost) error {
	from, err := c.loadParty(m.FromPartyID)
	if err != nil {
		return err
	}
	to, err := c.loadParty(m.ToPartyID)
	if err != nil {
		return err
	}
	if !to.IsActive() {
		return c.fail(fmt.Sprintf("devralan parti %d iptal edilmiş", to.ID))
	}

	cfg, err := c.planConfig()
	if err != nil {
		return err
	}

	for _, course := range m.Courses {
		assignment, err := c.assignRepo.FindByPlanPartyCourse(c.ctx, c.plan.ID, from.ID, course)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return c.fail(fmt.Sprintf("parti %d %s etabında ev sahibi değil", from.ID, course))
			}
			return err
		}

		removed, err := c.assignRepo.DeleteByPlanPartyCourses(c.ctx, c.plan.ID, from.ID, []models.Course{course})
		if err != nil {
			return err
		}
		c.result.AssignmentsRemoved += removed

		if err := c.assignRepo.Create(c.ctx, &models.Assignment{
			PlanID:            c.plan.ID,
			PartyID:           to.ID,
			Course:            course,
			IsHost:            true,
			MaxGuestHeadcount: assignment.MaxGuestHeadcount,
		}); err != nil {
			return err
		}
		c.result.AssignmentsCreated++

		// B bu etapta misafirse önce misafirlikten çıkarılır
		if removed, err := c.pairRepo.DeleteByGuestAndCourse(c.ctx, c.plan.ID, to.ID, course); err != nil {
			return err
		} else if removed > 0 {
			c.result.PairingsRemoved += removed
			deleted, err := c.envRepo.DeleteByPartyAndCourse(c.ctx, c.plan.ID, to.ID, course)
			if err != nil {
				return err
			}
			c.result.EnvelopesCancelled += deleted
		}

		// Yalnızca devredilen etabın zarfı iptal edilir; A başka bir etabı
		// hosting etmeye devam ediyor olabilir
		cancelled, err := c.envRepo.CancelActiveHostEnvelopeForCourse(c.ctx, c.plan.ID, from.ID, course)
		if err != nil {
			return err
		}
		c.result.EnvelopesCancelled += cancelled

		env := c.newEnvelope(cfg, *to, *to, course, true)
		if err := c.envRepo.Create(c.ctx, &env); err != nil {
			return err
		}
		c.result.EnvelopesCreated++
	}

	// Yönlendirme sil + yeniden yaz olarak sayılır
	repointed, err := c.pairRepo.RepointHost(c.ctx, c.plan.ID, from.ID, to.ID, m.Courses)
	if err != nil {
		return err
	}
	c.result.PairingsRemoved += repointed
	c.result.PairingsCreated += repointed

	updated, err := c.envRepo.RepointHost(c.ctx, c.plan.ID, from.ID, *to, m.Courses)
	if err != nil {
		return err
	}
	c.result.EnvelopesUpdated += updated
	return nil
}

// promoteHost misafiri ev sahibine dönüştürür ve istenirse verilen misafir
// listesini kapasite ve engel kontrolleriyle hemen oturtur.
func (c *cascadeTx) promoteHost(m PromoteHost) error {
	party, err := c.loadParty(m.PartyID)
	if err != nil {
		return err
	}
	if !party.IsActive() {
		return c.fail(fmt.Sprintf("parti %d iptal edilmiş", party.ID))
	}
	if _, err := c.assignRepo.FindByPlanPartyCourse(c.ctx, c.plan.ID, party.ID, m.Course); err == nil {
		return c.fail(fmt.Sprintf("parti %d zaten %s etabında ev sahibi", party.ID, m.Course))
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	cfg, err := c.planConfig()
	if err != nil {
		return err
	}
	blocked, err := c.blockRepo.FindAllByEvent(c.ctx, c.plan.EventID)
	if err != nil {
		return err
	}

	// Eski misafir izleri temizlenir
	removed, err := c.pairRepo.DeleteByGuestAndCourse(c.ctx, c.plan.ID, party.ID, m.Course)
	if err != nil {
		return err
	}
	c.result.PairingsRemoved += removed

	deleted, err := c.envRepo.DeleteByPartyAndCourse(c.ctx, c.plan.ID, party.ID, m.Course)
	if err != nil {
		return err
	}
	c.result.EnvelopesCancelled += deleted

	if err := c.assignRepo.Create(c.ctx, &models.Assignment{
		PlanID:            c.plan.ID,
		PartyID:           party.ID,
		Course:            m.Course,
		IsHost:            true,
		MaxGuestHeadcount: cfg.SeatsPerHost,
	}); err != nil {
		return err
	}
	c.result.AssignmentsCreated++

	hostEnv := c.newEnvelope(cfg, *party, *party, m.Course, true)
	if err := c.envRepo.Create(c.ctx, &hostEnv); err != nil {
		return err
	}
	c.result.EnvelopesCreated++

	seated := 0
	for _, guestID := range m.GuestPartyIDs {
		guest, err := c.loadParty(guestID)
		if err != nil {
			return err
		}
		if !guest.IsActive() {
			return c.fail(fmt.Sprintf("misafir %d iptal edilmiş", guestID))
		}
		for _, b := range blocked {
			if b.Matches(party.ID, guestID) {
				return c.fail(fmt.Sprintf("partiler %d ve %d engelli çift", party.ID, guestID))
			}
		}
		if seated+guest.Headcount > cfg.SeatsPerHost {
			return c.fail(fmt.Sprintf("misafir %d için kapasite yetersiz", guestID))
		}

		if removed, err := c.pairRepo.DeleteByGuestAndCourse(c.ctx, c.plan.ID, guestID, m.Course); err != nil {
			return err
		} else if removed > 0 {
			c.result.PairingsRemoved += removed
			deleted, err := c.envRepo.DeleteByPartyAndCourse(c.ctx, c.plan.ID, guestID, m.Course)
			if err != nil {
				return err
			}
			c.result.EnvelopesCancelled += deleted
		}

		if err := c.pairRepo.Create(c.ctx, &models.Pairing{
			PlanID:       c.plan.ID,
			Course:       m.Course,
			HostPartyID:  party.ID,
			GuestPartyID: guestID,
		}); err != nil {
			return err
		}
		c.result.PairingsCreated++

		guestEnv := c.newEnvelope(cfg, *guest, *party, m.Course, false)
		if err := c.envRepo.Create(c.ctx, &guestEnv); err != nil {
			return err
		}
		c.result.EnvelopesCreated++
		seated += guest.Headcount
	}
	return nil
}

// splitParty iki kişilik partiyi ikiye böler: mevcut kayıt bire düşürülür,
// yeni bağımsız parti oluşturulur ve yersiz olarak raporlanır. Mevcut
// pairing ve zarflar orijinal partide kalır.
func (c *cascadeTx) splitParty(m SplitParty) error {
	party, err := c.loadParty(m.PartyID)
	if err != nil {
		return err
	}
	if !party.IsActive() {
		return c.fail(fmt.Sprintf("parti %d iptal edilmiş", party.ID))
	}
	if party.Headcount < 2 {
		return c.fail(fmt.Sprintf("parti %d tek kişilik, bölünemez", party.ID))
	}

	party.Headcount = 1
	if err := c.partyRepo.Update(c.ctx, party); err != nil {
		return err
	}

	// Yeni hane aynı evi paylaşır: adresle birlikte ipucu metinleri de taşınır
	newParty := models.Party{
		EventID:     party.EventID,
		Name:        m.NewName,
		Email:       m.NewEmail,
		Headcount:   1,
		Street:      party.Street,
		HouseNumber: party.HouseNumber,
		Teasing:     party.Teasing,
		Clue1:       party.Clue1,
		Clue2:       party.Clue2,
	}
	if err := c.partyRepo.Create(c.ctx, &newParty); err != nil {
		return err
	}

	c.result.UnplacedPartyIDs = []uint{newParty.ID}
	return nil
}

var _ ICascadeService = (*CascadeService)(nil)
