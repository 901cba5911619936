package scheduler

import (
	"sync"
	"time"

	"github.com/blues/quirklr/internal/config"
	"github.com/blues/quirklr/internal/logger"
	"github.com/blues/quirklr/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// BalanceReconcileJob 余额对账任务。
// 支付流水是记账的事实来源，项目上的balance计数器按流水重算修正，
// 消除历史写入或人工操作造成的漂移。
type BalanceReconcileJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewBalanceReconcileJob 创建余额对账任务
func NewBalanceReconcileJob(db *gorm.DB, cfg *config.Config) *BalanceReconcileJob {
	return &BalanceReconcileJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *BalanceReconcileJob) GetName() string {
	return "balance_reconciler"
}

// GetSchedule 获取调度配置
func (j *BalanceReconcileJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行对账
func (j *BalanceReconcileJob) Execute() {
	logger.Info("Starting balance reconciliation task")

	var projects []model.ProjectModel
	if err := j.db.Find(&projects).Error; err != nil {
		logger.Error("Failed to fetch projects for reconciliation: %v", err)
		return
	}

	if len(projects) == 0 {
		return
	}

	// 按项目并发重算，池大小限制并发度
	poolSize := len(projects)
	if poolSize > 8 {
		poolSize = 8
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		logger.Error("Failed to create reconciliation pool: %v", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var fixedCount int64
	var mu sync.Mutex

	for i := range projects {
		project := projects[i]
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if j.reconcileProject(&project) {
				mu.Lock()
				fixedCount++
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit reconciliation task: %v", err)
		}
	}

	wg.Wait()
	logger.Info("Balance reconciliation completed. Checked %d projects, fixed %d", len(projects), fixedCount)
}

// reconcileProject 重算单个项目的余额，发生修正时返回true
func (j *BalanceReconcileJob) reconcileProject(project *model.ProjectModel) bool {
	var raised float64
	if err := j.db.Model(&model.PaymentModel{}).
		Where("project_id = ?", project.ProjectId).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&raised).Error; err != nil {
		logger.Error("Failed to sum payments for project %s: %v", project.ProjectId, err)
		return false
	}

	if project.Balance == raised {
		return false
	}

	logger.Warn("Balance drift detected for project %s: counter=%v, ledger=%v",
		project.ProjectId, project.Balance, raised)

	if err := j.db.Model(&model.ProjectModel{}).
		Where("project_id = ?", project.ProjectId).
		Update("balance", raised).Error; err != nil {
		logger.Error("Failed to fix balance for project %s: %v", project.ProjectId, err)
		return false
	}

	return true
}
