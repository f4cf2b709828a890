package payslip

import (
	"context"

	"github.com/ogurasousui/codex-hr-payroll/internal/core/payroll"
)

// Repository は給与明細永続化の抽象です。
type Repository interface {
	Upsert(ctx context.Context, payslip *Payslip) (*Payslip, error)
	Update(ctx context.Context, payslip *Payslip) (*Payslip, error)
	FindByID(ctx context.Context, id string) (*Payslip, error)
	List(ctx context.Context, employeeID string) ([]*Payslip, error)
}

// RecordSource は明細の元になる給与レコードを提供します。
type RecordSource interface {
	GetRecord(ctx context.Context, id string) (*payroll.Record, error)
}

// SettingsSource は通貨などの表示設定を提供します。
type SettingsSource interface {
	GetSettings(ctx context.Context) (*payroll.Settings, error)
}
