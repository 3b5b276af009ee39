package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"petshop/internal/domain/model"
	"petshop/internal/gateway"
	repo "petshop/internal/repository"
	"petshop/internal/session"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// AdminUsecase は注文ストア・カタログ・ユーザーストアをまたぐ管理画面の窓口。
// ダッシュボードのスナップショットをキャッシュし、更新系は成功時にその場でパッチする。
type AdminUsecase struct {
	orders      gateway.OrderGateway
	catalog     gateway.CatalogGateway
	users       gateway.UserGateway
	audit       repo.AuditLogRepository
	adjustments repo.StockAdjustmentRepository
	log         zerolog.Logger

	//取得ごとに番号を振り、新しい応答だけがスナップショットを置き換える。
	//遅れて着いた古い応答が新しい画面を巻き戻さないように。
	seq  atomic.Uint64
	mu   sync.Mutex
	snap *dashboardSnapshot
}

func NewAdminUsecase(
	orders gateway.OrderGateway,
	catalog gateway.CatalogGateway,
	users gateway.UserGateway,
	audit repo.AuditLogRepository,
	adjustments repo.StockAdjustmentRepository,
	log zerolog.Logger,
) *AdminUsecase {
	return &AdminUsecase{
		orders:      orders,
		catalog:     catalog,
		users:       users,
		audit:       audit,
		adjustments: adjustments,
		log:         log,
	}
}

// 公開したスナップショットは不変として扱う。返した出力が中のスライスを
// 参照しているので、更新系は書き換えずコピーして差し替える。
type dashboardSnapshot struct {
	seq         uint64
	orders      []model.Order
	users       []model.User
	foods       []model.Product
	accessories []model.Product
	fetchedAt   time.Time
}

// 集計値は全部導出。保存しない。
type DashboardOutput struct {
	TotalUsers     int                        `json:"total_users"`
	TotalOrders    int                        `json:"total_orders"`
	TotalProducts  int                        `json:"total_products"`
	PendingOrders  int                        `json:"pending_orders"`
	RevenueByMonth map[string]decimal.Decimal `json:"revenue_by_month"`
	Orders         []OrderOutput              `json:"orders"`
	Users          []model.User               `json:"users"`
	PetFoods       []model.Product            `json:"pet_foods"`
	Accessories    []model.Product            `json:"accessories"`
	FetchedAt      time.Time                  `json:"fetched_at"`
}

func requireAdmin(sess session.Session) error {
	if sess.UserID <= 0 {
		return NewDomainError(CodeUnauthenticated, http.StatusUnauthorized, "unauthorized")
	}
	if !sess.IsAdmin {
		return NewDomainError(CodeForbidden, http.StatusForbidden, "admin only")
	}
	return nil
}

// LoadDashboard は4つのコレクションを並列で取り、全部そろってから返す。
// どれか1つでも失敗したら部分的な画面は出さずに全体を失敗にする。
func (u *AdminUsecase) LoadDashboard(ctx context.Context, sess session.Session) (DashboardOutput, error) {
	if err := requireAdmin(sess); err != nil {
		return DashboardOutput{}, err
	}

	seq := u.seq.Add(1)

	var (
		orders      []model.Order
		users       []model.User
		foods       []model.Product
		accessories []model.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = u.orders.ListAdmin(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = u.users.ListAdmin(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		foods, err = u.catalog.ListAdmin(gctx, model.CategoryFood)
		return err
	})
	g.Go(func() error {
		var err error
		accessories, err = u.catalog.ListAdmin(gctx, model.CategoryAccessory)
		return err
	})

	if err := g.Wait(); err != nil {
		u.log.Warn().Err(err).Msg("dashboard load failed")
		return DashboardOutput{}, fromGatewayError(err)
	}

	fresh := &dashboardSnapshot{
		seq:         seq,
		orders:      orders,
		users:       users,
		foods:       foods,
		accessories: accessories,
		fetchedAt:   time.Now(),
	}

	u.mu.Lock()
	if u.snap == nil || seq > u.snap.seq {
		u.snap = fresh
	} else {
		//こちらの方が古い。新しいスナップショットを残す。
		u.log.Debug().Uint64("seq", seq).Uint64("latest", u.snap.seq).Msg("stale dashboard response dropped")
	}
	snap := u.snap
	u.mu.Unlock()

	return buildDashboard(snap), nil
}

func buildDashboard(snap *dashboardSnapshot) DashboardOutput {
	pending := 0
	revenue := make(map[string]decimal.Decimal)
	outs := make([]OrderOutput, 0, len(snap.orders))

	for _, o := range snap.orders {
		outs = append(outs, toOrderOutput(o))
		if o.Status == model.OrderStatusPending {
			pending++
		}
		//売上はキャンセル以外を月別に積む
		if o.Status != model.OrderStatusCancelled {
			month := o.CreatedAt.Format("2006-01")
			revenue[month] = revenue[month].Add(o.TotalPrice)
		}
	}

	return DashboardOutput{
		TotalUsers:     len(snap.users),
		TotalOrders:    len(snap.orders),
		TotalProducts:  len(snap.foods) + len(snap.accessories),
		PendingOrders:  pending,
		RevenueByMonth: revenue,
		Orders:         outs,
		Users:          snap.users,
		PetFoods:       snap.foods,
		Accessories:    snap.accessories,
		FetchedAt:      snap.fetchedAt,
	}
}

func patchOrders(orders []model.Order, updated model.Order) []model.Order {
	out := make([]model.Order, len(orders))
	copy(out, orders)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
			break
		}
	}
	return out
}

func patchProducts(items []model.Product, updated model.Product) []model.Product {
	out := make([]model.Product, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
			break
		}
	}
	return out
}

func patchUsers(users []model.User, updated model.User) []model.User {
	out := make([]model.User, len(users))
	copy(out, users)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
			break
		}
	}
	return out
}

// 管理者用の注文一覧（ダッシュボード外からも使う）
func (u *AdminUsecase) ListOrders(ctx context.Context, sess session.Session) ([]OrderOutput, error) {
	if err := requireAdmin(sess); err != nil {
		return []OrderOutput{}, err
	}
	orders, err := u.orders.ListAdmin(ctx)
	if err != nil {
		return []OrderOutput{}, fromGatewayError(err)
	}
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

func (u *AdminUsecase) ListUsers(ctx context.Context, sess session.Session) ([]model.User, error) {
	if err := requireAdmin(sess); err != nil {
		return []model.User{}, err
	}
	users, err := u.users.ListAdmin(ctx)
	if err != nil {
		return []model.User{}, fromGatewayError(err)
	}
	return users, nil
}

func (u *AdminUsecase) ListProducts(ctx context.Context, sess session.Session, category model.Category) ([]model.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return []model.Product{}, err
	}
	if !category.Valid() {
		return []model.Product{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid category")
	}
	items, err := u.catalog.ListAdmin(ctx, category)
	if err != nil {
		return []model.Product{}, fromGatewayError(err)
	}
	return items, nil
}

type UpdateOrderStatusInput struct {
	Status string
}

// UpdateOrderStatus はPENDING→DELIVERED / PENDING→CANCELLEDだけを通す。
// それ以外はネットワークに出る前にILLEGAL_TRANSITIONで弾く。
func (u *AdminUsecase) UpdateOrderStatus(ctx context.Context, sess session.Session, orderID int64, in UpdateOrderStatusInput) (OrderOutput, error) {
	if err := requireAdmin(sess); err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if !newStatus.Valid() {
		return OrderOutput{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid status")
	}

	current, err := u.currentOrder(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}

	if !current.Status.CanTransitionTo(newStatus) {
		return OrderOutput{}, NewDomainError(CodeIllegalTransition, http.StatusConflict,
			fmt.Sprintf("cannot change %s order to %s", current.Status, newStatus))
	}

	updated, err := u.orders.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			//向こうでも遷移が拒否された（並行更新で先を越された）
			return OrderOutput{}, WrapDomainError(CodeIllegalTransition, http.StatusConflict, "conflicting status change", err)
		}
		return OrderOutput{}, fromGatewayError(err)
	}

	//キャッシュ済みの一覧をパッチ（再取得しない）。コピーして差し替える。
	u.mu.Lock()
	if u.snap != nil {
		next := *u.snap
		next.orders = patchOrders(u.snap.orders, updated)
		u.snap = &next
	}
	u.mu.Unlock()

	u.writeAudit(ctx, sess, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
		fmt.Sprintf(`{"status":%q}`, current.Status), fmt.Sprintf(`{"status":%q}`, newStatus))

	return toOrderOutput(updated), nil
}

type AdjustStockInput struct {
	Category model.Category
	Delta    int64
	Reason   string
}

// AdjustStock は符号付きdeltaを現在在庫に適用する。
// 適用結果が負になるならNEGATIVE_STOCK_RESULTで拒否し、在庫はそのまま。
func (u *AdminUsecase) AdjustStock(ctx context.Context, sess session.Session, productID int64, in AdjustStockInput) (model.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return model.Product{}, err
	}
	if productID <= 0 {
		return model.Product{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid product id")
	}
	if !in.Category.Valid() {
		return model.Product{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid category")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return model.Product{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "reason required")
	}

	p, err := u.findAdminProduct(ctx, in.Category, productID)
	if err != nil {
		return model.Product{}, err
	}

	newStock := p.Stock + in.Delta
	if newStock < 0 {
		return model.Product{}, NewDomainError(CodeNegativeStockResult, http.StatusConflict,
			fmt.Sprintf("stock would become %d", newStock))
	}

	updated, err := u.catalog.SetStock(ctx, in.Category, productID, newStock)
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			//同じ商品へ同時に調整が入った
			return model.Product{}, WrapDomainError(CodeNegativeStockResult, http.StatusConflict, "conflicting stock update", err)
		}
		return model.Product{}, fromGatewayError(err)
	}

	//調整履歴（差分）
	if err := u.adjustments.Create(ctx, model.StockAdjustment{
		ProductID:   productID,
		Category:    in.Category,
		AdminUserID: sess.UserID,
		Delta:       in.Delta,
		Reason:      strings.TrimSpace(in.Reason),
		CreatedAt:   time.Now(),
	}); err != nil {
		u.log.Error().Err(err).Int64("product_id", productID).Msg("stock adjustment history write failed")
	}

	u.mu.Lock()
	if u.snap != nil {
		next := *u.snap
		if in.Category == model.CategoryAccessory {
			next.accessories = patchProducts(u.snap.accessories, updated)
		} else {
			next.foods = patchProducts(u.snap.foods, updated)
		}
		u.snap = &next
	}
	u.mu.Unlock()

	u.writeAudit(ctx, sess, model.AuditActionAdjustStock, model.AuditResourceProduct, productID,
		fmt.Sprintf(`{"stock":%d}`, p.Stock), fmt.Sprintf(`{"stock":%d}`, newStock))

	return updated, nil
}

// ToggleUserRole はisAdminを反転する。自分自身は対象にできない
// （最後の管理者が自分を降格して締め出す事故を防ぐ）。
func (u *AdminUsecase) ToggleUserRole(ctx context.Context, sess session.Session, userID int64) (model.User, error) {
	if err := requireAdmin(sess); err != nil {
		return model.User{}, err
	}
	if userID <= 0 {
		return model.User{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid user id")
	}
	if userID == sess.UserID {
		return model.User{}, NewDomainError(CodeSelfDemotionForbidden, http.StatusForbidden, "cannot change own role")
	}

	users, err := u.users.ListAdmin(ctx)
	if err != nil {
		return model.User{}, fromGatewayError(err)
	}

	var target *model.User
	for i := range users {
		if users[i].ID == userID {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return model.User{}, NewDomainError(CodeNotFound, http.StatusNotFound, "user not found")
	}

	updated, err := u.users.SetRole(ctx, userID, !target.IsAdmin)
	if err != nil {
		return model.User{}, fromGatewayError(err)
	}

	u.mu.Lock()
	if u.snap != nil {
		next := *u.snap
		next.users = patchUsers(u.snap.users, updated)
		u.snap = &next
	}
	u.mu.Unlock()

	u.writeAudit(ctx, sess, model.AuditActionToggleUserRole, model.AuditResourceUser, userID,
		fmt.Sprintf(`{"is_admin":%t}`, target.IsAdmin), fmt.Sprintf(`{"is_admin":%t}`, updated.IsAdmin))

	return updated, nil
}

// 管理者操作の履歴（新しい順）
func (u *AdminUsecase) ListAuditLogs(ctx context.Context, sess session.Session, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := requireAdmin(sess); err != nil {
		return []model.AuditLog{}, err
	}
	logs, err := u.audit.List(ctx, filter)
	if err != nil {
		return []model.AuditLog{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}
	return logs, nil
}

// 商品ごとの在庫調整履歴
func (u *AdminUsecase) ListStockAdjustments(ctx context.Context, sess session.Session, productID int64) ([]model.StockAdjustment, error) {
	if err := requireAdmin(sess); err != nil {
		return []model.StockAdjustment{}, err
	}
	if productID <= 0 {
		return []model.StockAdjustment{}, NewDomainError(CodeInvalidInput, http.StatusBadRequest, "invalid product id")
	}
	adjs, err := u.adjustments.ListByProductID(ctx, productID)
	if err != nil {
		return []model.StockAdjustment{}, WrapDomainError(CodeInternal, http.StatusInternalServerError, "db error", err)
	}
	return adjs, nil
}

// 遷移チェック用に現在の注文を引く。キャッシュにあればそれを使う。
func (u *AdminUsecase) currentOrder(ctx context.Context, orderID int64) (model.Order, error) {
	u.mu.Lock()
	if u.snap != nil {
		for _, o := range u.snap.orders {
			if o.ID == orderID {
				u.mu.Unlock()
				return o, nil
			}
		}
	}
	u.mu.Unlock()

	orders, err := u.orders.ListAdmin(ctx)
	if err != nil {
		return model.Order{}, fromGatewayError(err)
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, NewDomainError(CodeNotFound, http.StatusNotFound, "order not found")
}

// 非公開商品も在庫調整の対象なので管理者用一覧から探す。
func (u *AdminUsecase) findAdminProduct(ctx context.Context, category model.Category, productID int64) (model.Product, error) {
	items, err := u.catalog.ListAdmin(ctx, category)
	if err != nil {
		return model.Product{}, fromGatewayError(err)
	}
	for _, p := range items {
		if p.ID == productID {
			return p, nil
		}
	}
	return model.Product{}, NewDomainError(CodeNotFound, http.StatusNotFound, "product not found")
}

// 監査ログ。リモート側の更新は巻き戻せないので、書けなかったらログに残すだけ。
func (u *AdminUsecase) writeAudit(ctx context.Context, sess session.Session, action model.AuditAction, resource model.AuditResourceType, resourceID int64, beforeJSON string, afterJSON string) {
	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  sess.UserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		u.log.Error().Err(err).Str("action", string(action)).Int64("resource_id", resourceID).Msg("audit log write failed")
	}
}
