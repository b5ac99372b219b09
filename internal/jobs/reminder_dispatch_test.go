package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"agencycrm/internal/models"
	"agencycrm/internal/monitoring"
	"agencycrm/internal/services"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ReminderJobTestSuite struct {
	suite.Suite
	leadRepo     *MockLeadRepository
	proposalRepo *MockProposalRepository
	invoiceRepo  *MockInvoiceRepository
	settings     *MockSettingsService
	gateway      *MockMessageGateway
	metrics      *monitoring.Metrics
	job          *ReminderJob
	tenant       *models.Tenant
	now          time.Time
}

func (suite *ReminderJobTestSuite) SetupTest() {
	suite.leadRepo = &MockLeadRepository{}
	suite.proposalRepo = &MockProposalRepository{}
	suite.invoiceRepo = &MockInvoiceRepository{}
	suite.settings = &MockSettingsService{}
	suite.gateway = &MockMessageGateway{}
	suite.metrics = monitoring.NewMetrics()

	scanner := NewEligibilityScanner(suite.leadRepo, suite.proposalRepo, suite.invoiceRepo)
	suite.job = NewReminderJob(scanner, suite.settings, suite.gateway, suite.invoiceRepo, suite.metrics, zap.NewNop())

	suite.tenant = &models.Tenant{
		ID:               uuid.New(),
		Name:             "Agência Norte",
		Status:           models.TenantStatusActive,
		WhatsappURL:      strPtr("https://evo.example.com"),
		WhatsappAPIKey:   strPtr("secret"),
		WhatsappInstance: strPtr("norte"),
	}
	suite.now = time.Date(2026, 3, 8, 9, 0, 0, 0, brt)
}

func (suite *ReminderJobTestSuite) TearDownTest() {
	suite.invoiceRepo.AssertExpectations(suite.T())
	suite.settings.AssertExpectations(suite.T())
	suite.gateway.AssertExpectations(suite.T())
}

func (suite *ReminderJobTestSuite) invoice(clientName string, phone *string, due time.Time, status string, amount float64) *models.Invoice {
	return &models.Invoice{
		ID:       uuid.New(),
		TenantID: suite.tenant.ID,
		Amount:   amount,
		DueDate:  due,
		Status:   status,
		Client:   &models.Client{ID: uuid.New(), TenantID: suite.tenant.ID, Name: clientName, Phone: phone},
	}
}

func (suite *ReminderJobTestSuite) expectInvoices(pending, overdue []*models.Invoice) {
	suite.invoiceRepo.On("ListByStatus", mock.Anything, suite.tenant.ID, models.InvoiceStatusPending).Return(pending, nil).Once()
	suite.invoiceRepo.On("ListByStatus", mock.Anything, suite.tenant.ID, models.InvoiceStatusOverdue).Return(overdue, nil).Once()
}

func (suite *ReminderJobTestSuite) TestRun_SendsUpcomingReminder() {
	inv := suite.invoice("Maria", strPtr("+55 11 99999-0000"), dueOn(2026, 3, 10), models.InvoiceStatusPending, 1500)
	suite.expectInvoices([]*models.Invoice{inv}, nil)
	suite.settings.On("GetTenant", mock.Anything, suite.tenant.ID).Return(suite.tenant, nil)

	expectedBody := "Olá Maria! Lembramos que sua fatura no valor de R$ 1.500,00 vence em 10/03/2026. Evite multas efetuando o pagamento em dia."
	suite.gateway.On("Send", mock.Anything, suite.tenant.ID, "+55 11 99999-0000", expectedBody).Return(nil)
	suite.invoiceRepo.On("MarkReminded", mock.Anything, suite.tenant.ID, inv.ID, suite.now).Return(nil)

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Processed)
	assert.Equal(suite.T(), 1, result.Attempted)
	assert.Equal(suite.T(), 0, result.SkippedNoPhone)
	assert.Equal(suite.T(), []models.ReminderDetail{{ID: inv.ID, Status: models.ReminderSent, Type: models.ReminderTypeUpcoming}}, result.Details)
	assert.Equal(suite.T(), float64(1), testutil.ToFloat64(suite.metrics.RemindersDispatched.WithLabelValues("upcoming", "sent")))
	assert.Equal(suite.T(), float64(1), testutil.ToFloat64(suite.metrics.ReminderRuns.WithLabelValues("success")))
}

func (suite *ReminderJobTestSuite) TestRun_CustomOverdueTemplate() {
	suite.tenant.ReminderTemplateOverdue = strPtr("{{client_name}}, pague R$ {{valor}} ({{due_date}})")
	inv := suite.invoice("", strPtr("11988887777"), dueOn(2026, 2, 20), models.InvoiceStatusOverdue, 80.5)
	suite.expectInvoices(nil, []*models.Invoice{inv})
	suite.settings.On("GetTenant", mock.Anything, suite.tenant.ID).Return(suite.tenant, nil)
	suite.gateway.On("Send", mock.Anything, suite.tenant.ID, "11988887777", "Cliente, pague R$ 80,50 (20/02/2026)").Return(nil)
	suite.invoiceRepo.On("MarkReminded", mock.Anything, suite.tenant.ID, inv.ID, suite.now).Return(nil)

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Processed)
	assert.Equal(suite.T(), models.ReminderTypeOverdue, result.Details[0].Type)
}

func (suite *ReminderJobTestSuite) TestRun_SkipsInvoiceWithoutPhone() {
	noPhone := suite.invoice("Joana", nil, dueOn(2026, 1, 5), models.InvoiceStatusOverdue, 300)
	blankPhone := suite.invoice("Pedro", strPtr("  -  "), dueOn(2026, 1, 6), models.InvoiceStatusOverdue, 300)
	suite.expectInvoices(nil, []*models.Invoice{noPhone, blankPhone})
	suite.settings.On("GetTenant", mock.Anything, suite.tenant.ID).Return(suite.tenant, nil)

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, result.Processed)
	assert.Equal(suite.T(), 2, result.Attempted)
	assert.Equal(suite.T(), 2, result.SkippedNoPhone)
	assert.Empty(suite.T(), result.Details)
	suite.gateway.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.invoiceRepo.AssertNotCalled(suite.T(), "MarkReminded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReminderJobTestSuite) TestRun_FailedSendDoesNotStopBatch() {
	failing := suite.invoice("Ana", strPtr("5511911111111"), dueOn(2026, 3, 9), models.InvoiceStatusPending, 10)
	ok := suite.invoice("Rui", strPtr("5511922222222"), dueOn(2026, 1, 9), models.InvoiceStatusOverdue, 20)
	suite.expectInvoices([]*models.Invoice{failing}, []*models.Invoice{ok})
	suite.settings.On("GetTenant", mock.Anything, suite.tenant.ID).Return(suite.tenant, nil)

	suite.gateway.On("Send", mock.Anything, suite.tenant.ID, "5511911111111", mock.Anything).
		Return(&services.DispatchFailedError{Phone: "5511911111111", Err: errors.New("provider returned 500")})
	suite.gateway.On("Send", mock.Anything, suite.tenant.ID, "5511922222222", mock.Anything).Return(nil)
	suite.invoiceRepo.On("MarkReminded", mock.Anything, suite.tenant.ID, ok.ID, suite.now).Return(nil)

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Processed)
	assert.Equal(suite.T(), 2, result.Attempted)
	assert.Equal(suite.T(), []models.ReminderDetail{
		{ID: failing.ID, Status: models.ReminderFailed, Type: models.ReminderTypeUpcoming},
		{ID: ok.ID, Status: models.ReminderSent, Type: models.ReminderTypeOverdue},
	}, result.Details)
	suite.invoiceRepo.AssertNotCalled(suite.T(), "MarkReminded", mock.Anything, suite.tenant.ID, failing.ID, mock.Anything)
}

func (suite *ReminderJobTestSuite) TestRun_TimestampWriteFailureStillCountsAsSent() {
	inv := suite.invoice("Ana", strPtr("5511911111111"), dueOn(2026, 3, 9), models.InvoiceStatusPending, 10)
	suite.expectInvoices([]*models.Invoice{inv}, nil)
	suite.settings.On("GetTenant", mock.Anything, suite.tenant.ID).Return(suite.tenant, nil)
	suite.gateway.On("Send", mock.Anything, suite.tenant.ID, "5511911111111", mock.Anything).Return(nil)
	suite.invoiceRepo.On("MarkReminded", mock.Anything, suite.tenant.ID, inv.ID, suite.now).Return(errors.New("deadlock"))

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Processed)
	assert.Equal(suite.T(), models.ReminderSent, result.Details[0].Status)
}

func (suite *ReminderJobTestSuite) TestRun_NothingEligibleSkipsCredentialCheck() {
	suite.expectInvoices([]*models.Invoice{}, []*models.Invoice{})

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), &models.ReminderRunResult{Details: []models.ReminderDetail{}}, result)
	suite.settings.AssertNotCalled(suite.T(), "GetTenant", mock.Anything, mock.Anything)
}

func (suite *ReminderJobTestSuite) TestRun_MissingCredentials() {
	suite.tenant.WhatsappAPIKey = nil
	suite.tenant.WhatsappInstance = strPtr("   ")
	inv := suite.invoice("Ana", strPtr("5511911111111"), dueOn(2026, 3, 9), models.InvoiceStatusPending, 10)
	suite.expectInvoices([]*models.Invoice{inv}, nil)
	suite.settings.On("GetTenant", mock.Anything, suite.tenant.ID).Return(suite.tenant, nil)

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	assert.Nil(suite.T(), result)
	var cfgErr *services.ConfigurationMissingError
	require.True(suite.T(), errors.As(err, &cfgErr))
	assert.Equal(suite.T(), services.MissingCredentials{WhatsappAPIKey: true, WhatsappInstance: true}, cfgErr.Missing)
	suite.gateway.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(suite.T(), float64(1), testutil.ToFloat64(suite.metrics.ReminderRuns.WithLabelValues("configuration_missing")))
}

func (suite *ReminderJobTestSuite) TestRun_ScanError() {
	suite.invoiceRepo.On("ListByStatus", mock.Anything, suite.tenant.ID, models.InvoiceStatusPending).
		Return(nil, errors.New("connection reset"))

	result, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)

	assert.Nil(suite.T(), result)
	assert.Error(suite.T(), err)
	var cfgErr *services.ConfigurationMissingError
	assert.False(suite.T(), errors.As(err, &cfgErr))
	assert.Equal(suite.T(), float64(1), testutil.ToFloat64(suite.metrics.ReminderRuns.WithLabelValues("error")))
}

func (suite *ReminderJobTestSuite) TestRun_SecondRunSameDaySendsNothing() {
	inv := suite.invoice("Maria", strPtr("5511999990000"), dueOn(2026, 3, 10), models.InvoiceStatusPending, 1500)
	suite.expectInvoices([]*models.Invoice{inv}, nil)
	suite.settings.On("GetTenant", mock.Anything, suite.tenant.ID).Return(suite.tenant, nil).Once()
	suite.gateway.On("Send", mock.Anything, suite.tenant.ID, "5511999990000", mock.Anything).Return(nil).Once()
	suite.invoiceRepo.On("MarkReminded", mock.Anything, suite.tenant.ID, inv.ID, suite.now).
		Run(func(args mock.Arguments) {
			at := args.Get(3).(time.Time)
			inv.LastReminderAt = &at
		}).
		Return(nil).Once()

	first, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, first.Processed)

	suite.expectInvoices([]*models.Invoice{inv}, nil)
	second, err := suite.job.Run(context.Background(), suite.tenant.ID, suite.now.Add(6*time.Hour))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, second.Attempted)
	assert.Empty(suite.T(), second.Details)
}

func TestReminderJobTestSuite(t *testing.T) {
	suite.Run(t, new(ReminderJobTestSuite))
}
