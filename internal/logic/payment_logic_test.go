package logic

import (
	"errors"
	"testing"

	"github.com/blues/quirklr/internal/model"
)

func TestGetProjectProgressFundraising(t *testing.T) {
	db := newTestDB(t)
	project := mustCreateProject(t, db, &model.ProjectModel{
		ProjectId:       "p1",
		Title:           "开源打赏",
		PaymentType:     model.PaymentTypeFundraising,
		FundraisingGoal: 1000,
		CreatorWallet:   "0xcreator",
	})

	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xa", PayerWallet: "0x1", Amount: 300})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xb", PayerWallet: "0x2", Amount: 300})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xc", PayerWallet: "0x3", Amount: 400})

	result, err := NewPaymentLogic(db).GetProjectProgress(project.ProjectId)
	if err != nil {
		t.Fatalf("GetProjectProgress: %v", err)
	}

	if result.Current != 1000 {
		t.Errorf("Current = %v, want 1000", result.Current)
	}
	if result.RawPercent != 100 {
		t.Errorf("RawPercent = %v, want 100", result.RawPercent)
	}
	if result.PercentCompletion != "100%" {
		t.Errorf("PercentCompletion = %q, want \"100%%\"", result.PercentCompletion)
	}
	if result.PayeeCount != 3 {
		t.Errorf("PayeeCount = %d, want 3", result.PayeeCount)
	}
	if result.Balance != 0 {
		t.Errorf("Balance = %v, want 0", result.Balance)
	}
	if result.Goal != 1000 {
		t.Errorf("Goal = %v, want 1000", result.Goal)
	}
}

func TestGetProjectProgressPartial(t *testing.T) {
	db := newTestDB(t)
	mustCreateProject(t, db, &model.ProjectModel{
		ProjectId:       "p1",
		Title:           "部分达成",
		PaymentType:     model.PaymentTypeFundraising,
		FundraisingGoal: 300,
		CreatorWallet:   "0xcreator",
	})

	// 同一钱包付两笔，只计为一个付款人
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xa", PayerWallet: "0x1", Amount: 50})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xb", PayerWallet: "0x1", Amount: 50})

	result, err := NewPaymentLogic(db).GetProjectProgress("p1")
	if err != nil {
		t.Fatalf("GetProjectProgress: %v", err)
	}

	if result.Current != 100 {
		t.Errorf("Current = %v, want 100", result.Current)
	}
	if result.PayeeCount != 1 {
		t.Errorf("PayeeCount = %d, want 1", result.PayeeCount)
	}
	if result.RawPercent != 33.33 {
		t.Errorf("RawPercent = %v, want 33.33", result.RawPercent)
	}
	if result.PercentCompletion != "33.33%" {
		t.Errorf("PercentCompletion = %q, want \"33.33%%\"", result.PercentCompletion)
	}
	if result.Balance != 200 {
		t.Errorf("Balance = %v, want 200", result.Balance)
	}
}

func TestGetProjectProgressOverfunded(t *testing.T) {
	db := newTestDB(t)
	mustCreateProject(t, db, &model.ProjectModel{
		ProjectId:       "p1",
		Title:           "超额",
		PaymentType:     model.PaymentTypeFundraising,
		FundraisingGoal: 100,
		CreatorWallet:   "0xcreator",
	})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xa", PayerWallet: "0x1", Amount: 150})

	result, err := NewPaymentLogic(db).GetProjectProgress("p1")
	if err != nil {
		t.Fatalf("GetProjectProgress: %v", err)
	}

	// 剩余额不为负数
	if result.Balance != 0 {
		t.Errorf("Balance = %v, want 0", result.Balance)
	}
	if result.RawPercent != 150 {
		t.Errorf("RawPercent = %v, want 150", result.RawPercent)
	}
}

func TestGetProjectProgressOnetime(t *testing.T) {
	db := newTestDB(t)
	mustCreateProject(t, db, &model.ProjectModel{
		ProjectId:   "p1",
		Title:       "一次性收款",
		PaymentType: model.PaymentTypeOnetime,
		FixedAmount: 50,
		Balance:     100,
		CreatorWallet: "0xcreator",
	})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xa", PayerWallet: "0x1", Amount: 50})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xb", PayerWallet: "0x2", Amount: 50})

	result, err := NewPaymentLogic(db).GetProjectProgress("p1")
	if err != nil {
		t.Fatalf("GetProjectProgress: %v", err)
	}

	if result.Balance != 100 {
		t.Errorf("Balance = %v, want 100", result.Balance)
	}
	if result.PayeeCount != 2 {
		t.Errorf("PayeeCount = %d, want 2", result.PayeeCount)
	}
	if result.Current != 100 {
		t.Errorf("Current = %v, want 100", result.Current)
	}
	// 一次性收款不计算百分比
	if result.PercentCompletion != "" {
		t.Errorf("PercentCompletion = %q, want empty", result.PercentCompletion)
	}
}

func TestGetProjectProgressNoPayments(t *testing.T) {
	db := newTestDB(t)
	mustCreateProject(t, db, &model.ProjectModel{
		ProjectId:       "p1",
		Title:           "空项目",
		PaymentType:     model.PaymentTypeFundraising,
		FundraisingGoal: 500,
		CreatorWallet:   "0xcreator",
	})

	result, err := NewPaymentLogic(db).GetProjectProgress("p1")
	if err != nil {
		t.Fatalf("GetProjectProgress: %v", err)
	}

	if result.Current != 0 || result.PayeeCount != 0 {
		t.Errorf("Current = %v, PayeeCount = %d, want 0, 0", result.Current, result.PayeeCount)
	}
	if result.PercentCompletion != "0%" {
		t.Errorf("PercentCompletion = %q, want \"0%%\"", result.PercentCompletion)
	}
	if result.Balance != 500 {
		t.Errorf("Balance = %v, want 500", result.Balance)
	}
}

func TestGetProjectProgressNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := NewPaymentLogic(db).GetProjectProgress("missing")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("err = %v, want ErrProjectNotFound", err)
	}
}

func TestCheckPaymentStatus(t *testing.T) {
	db := newTestDB(t)
	mustCreateProject(t, db, &model.ProjectModel{
		ProjectId:     "p1",
		Title:         "检查支付",
		PaymentType:   model.PaymentTypeOnetime,
		FixedAmount:   10,
		CreatorWallet: "0xcreator",
	})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xa", PayerWallet: "0x1", Amount: 10})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xb", PayerWallet: "0x1", Amount: 10})

	logic := NewPaymentLogic(db)

	hasPaid, count, err := logic.CheckPaymentStatus("p1", "0x1")
	if err != nil {
		t.Fatalf("CheckPaymentStatus: %v", err)
	}
	if !hasPaid || count != 2 {
		t.Errorf("hasPaid = %v, count = %d, want true, 2", hasPaid, count)
	}

	hasPaid, count, err = logic.CheckPaymentStatus("p1", "0x9")
	if err != nil {
		t.Fatalf("CheckPaymentStatus: %v", err)
	}
	if hasPaid || count != 0 {
		t.Errorf("hasPaid = %v, count = %d, want false, 0", hasPaid, count)
	}
}

func TestFindPayment(t *testing.T) {
	db := newTestDB(t)
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xa", PayerWallet: "0x1", Amount: 10})

	logic := NewPaymentLogic(db)

	payment, err := logic.FindPayment("p1", "0x1")
	if err != nil {
		t.Fatalf("FindPayment: %v", err)
	}
	if payment.PaymentId != "0xa" {
		t.Errorf("PaymentId = %q, want %q", payment.PaymentId, "0xa")
	}

	if _, err := logic.FindPayment("p1", "0x9"); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}

func TestGetPaymentsFilters(t *testing.T) {
	db := newTestDB(t)
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p1", PaymentId: "0xa", PayerWallet: "0x1", Amount: 10})
	mustCreatePayment(t, db, &model.PaymentModel{ProjectId: "p2", PaymentId: "0xb", PayerWallet: "0x2", Amount: 20})

	logic := NewPaymentLogic(db)

	all, err := logic.GetPayments("")
	if err != nil {
		t.Fatalf("GetPayments: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	mine, err := logic.GetPayments("0x1")
	if err != nil {
		t.Fatalf("GetPayments: %v", err)
	}
	if len(mine) != 1 || mine[0].PaymentId != "0xa" {
		t.Errorf("mine = %+v, want single payment 0xa", mine)
	}

	byProject, err := logic.GetPaymentsByProject("p2")
	if err != nil {
		t.Fatalf("GetPaymentsByProject: %v", err)
	}
	if len(byProject) != 1 || byProject[0].PaymentId != "0xb" {
		t.Errorf("byProject = %+v, want single payment 0xb", byProject)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		raw  float64
		want string
	}{
		{0, "0%"},
		{33.33, "33.33%"},
		{100, "100%"},
		{150, "150%"},
		{0.5, "0.5%"},
	}

	for _, tt := range tests {
		if got := formatPercent(tt.raw); got != tt.want {
			t.Errorf("formatPercent(%v) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{33.333333, 33.33},
		{66.666666, 66.67},
		{100, 100},
		{0.005, 0.01},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
