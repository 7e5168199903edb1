package transactiondelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-account/internal/accountdelivery"
	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/go-petr/pet-account/pkg/randompkg"
	"github.com/go-petr/pet-account/pkg/web"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if err := accountdelivery.RegisterValidators(); err != nil {
		fmt.Fprintf(os.Stderr, "RegisterValidators() returned error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func randomTransaction(typ domain.TransactionType) domain.Transaction {
	return domain.Transaction{
		TransactionID:   domain.NewTransactionID(),
		AccountID:       randompkg.IntBetween(1, 1000),
		AccountNumber:   randompkg.AccountNumber(),
		Type:            typ,
		Result:          domain.TransactionResultSuccess,
		Amount:          randompkg.MoneyAmountBetween(10, 10_000),
		BalanceSnapshot: randompkg.MoneyAmountBetween(0, 10_000),
		TransactedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

type testCase struct {
	name           string
	body           string
	buildStubs     func(ts *MockService)
	wantStatusCode int
	wantError      *web.JSONError
}

func run(t *testing.T, testCases []testCase, method, path, route string, handle func(h *Handler) gin.HandlerFunc, want domain.Transaction) {
	t.Helper()

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ts := NewMockService(ctrl)
			tc.buildStubs(ts)

			server := gin.New()
			server.Handle(method, route, handle(NewHandler(ts)))

			req, err := http.NewRequest(method, path, bytes.NewBufferString(tc.body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			got := &data{}
			res := web.Response{Data: got}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if diff := cmp.Diff(tc.wantError, res.Error); diff != "" {
				t.Errorf("res.Error mismatch (-want +got):\n%s", diff)
			}

			if tc.wantError == nil {
				if diff := cmp.Diff(want, got.Transaction); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestUse(t *testing.T) {
	tr := randomTransaction(domain.TransactionTypeUse)
	userID := randompkg.IntBetween(1, 1000)
	okBody := fmt.Sprintf(`{"user_id":%d,"account_number":%q,"amount":%d}`, userID, tr.AccountNumber, tr.Amount)

	rejectedWith := func(err error) func(ts *MockService) {
		return func(ts *MockService) {
			ts.EXPECT().
				Use(gomock.Any(), gomock.Eq(userID), gomock.Eq(tr.AccountNumber), gomock.Eq(tr.Amount)).
				Times(1).
				Return(domain.Transaction{}, err)
		}
	}

	notCalled := func(ts *MockService) {
		ts.EXPECT().Use(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	}

	testCases := []testCase{
		{
			name: "OK",
			body: okBody,
			buildStubs: func(ts *MockService) {
				ts.EXPECT().
					Use(gomock.Any(), gomock.Eq(userID), gomock.Eq(tr.AccountNumber), gomock.Eq(tr.Amount)).
					Times(1).
					Return(tr, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "AmountTooSmall",
			body:           fmt.Sprintf(`{"user_id":%d,"account_number":%q,"amount":9}`, userID, tr.AccountNumber),
			buildStubs:     notCalled,
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.InvalidRequest("Amount must be at least 10"),
		},
		{
			name:           "AmountTooLarge",
			body:           fmt.Sprintf(`{"user_id":%d,"account_number":%q,"amount":1000000001}`, userID, tr.AccountNumber),
			buildStubs:     notCalled,
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.InvalidRequest("Amount must be at most 1000000000"),
		},
		{
			name:           "InvalidAccountNumber",
			body:           fmt.Sprintf(`{"user_id":%d,"account_number":"abc","amount":100}`, userID),
			buildStubs:     notCalled,
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.InvalidRequest("AccountNumber is not a valid account number"),
		},
		{
			name:           "ErrUserNotFound",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrUserNotFound),
			wantStatusCode: http.StatusNotFound,
			wantError:      web.Error(domain.ErrUserNotFound),
		},
		{
			name:           "ErrOwnerMismatch",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrOwnerMismatch),
			wantStatusCode: http.StatusForbidden,
			wantError:      web.Error(domain.ErrOwnerMismatch),
		},
		{
			name:           "ErrAccountClosed",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrAccountClosed),
			wantStatusCode: http.StatusConflict,
			wantError:      web.Error(domain.ErrAccountClosed),
		},
		{
			name:           "ErrAmountExceedsBalance",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrAmountExceedsBalance),
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.Error(domain.ErrAmountExceedsBalance),
		},
		{
			name:           "InternalServerError",
			body:           okBody,
			buildStubs:     rejectedWith(errorspkg.ErrInternal),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      web.Error(errorspkg.ErrInternal),
		},
	}

	handle := func(h *Handler) gin.HandlerFunc { return h.Use }
	run(t, testCases, http.MethodPost, "/transactions/use", "/transactions/use", handle, tr)
}

func TestCancel(t *testing.T) {
	tr := randomTransaction(domain.TransactionTypeCancel)
	originalID := domain.NewTransactionID()
	okBody := fmt.Sprintf(`{"transaction_id":%q,"account_number":%q,"amount":%d}`, originalID, tr.AccountNumber, tr.Amount)

	rejectedWith := func(err error) func(ts *MockService) {
		return func(ts *MockService) {
			ts.EXPECT().
				Cancel(gomock.Any(), gomock.Eq(originalID), gomock.Eq(tr.AccountNumber), gomock.Eq(tr.Amount)).
				Times(1).
				Return(domain.Transaction{}, err)
		}
	}

	testCases := []testCase{
		{
			name: "OK",
			body: okBody,
			buildStubs: func(ts *MockService) {
				ts.EXPECT().
					Cancel(gomock.Any(), gomock.Eq(originalID), gomock.Eq(tr.AccountNumber), gomock.Eq(tr.Amount)).
					Times(1).
					Return(tr, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidTransactionID",
			body: fmt.Sprintf(`{"transaction_id":"abc","account_number":%q,"amount":%d}`, tr.AccountNumber, tr.Amount),
			buildStubs: func(ts *MockService) {
				ts.EXPECT().Cancel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.InvalidRequest("TransactionID must be 32 characters long"),
		},
		{
			name:           "ErrTransactionNotFound",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrTransactionNotFound),
			wantStatusCode: http.StatusNotFound,
			wantError:      web.Error(domain.ErrTransactionNotFound),
		},
		{
			name:           "ErrTransactionAccountMismatch",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrTransactionAccountMismatch),
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.Error(domain.ErrTransactionAccountMismatch),
		},
		{
			name:           "ErrCancelMustBeFull",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrCancelMustBeFull),
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.Error(domain.ErrCancelMustBeFull),
		},
		{
			name:           "ErrTooOldToCancel",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrTooOldToCancel),
			wantStatusCode: http.StatusBadRequest,
			wantError:      web.Error(domain.ErrTooOldToCancel),
		},
		{
			name:           "ErrTransactionNotCancelable",
			body:           okBody,
			buildStubs:     rejectedWith(domain.ErrTransactionNotCancelable),
			wantStatusCode: http.StatusConflict,
			wantError:      web.Error(domain.ErrTransactionNotCancelable),
		},
	}

	handle := func(h *Handler) gin.HandlerFunc { return h.Cancel }
	run(t, testCases, http.MethodPost, "/transactions/cancel", "/transactions/cancel", handle, tr)
}

func TestGet(t *testing.T) {
	tr := randomTransaction(domain.TransactionTypeUse)

	testCases := []testCase{
		{
			name: "OK",
			buildStubs: func(ts *MockService) {
				ts.EXPECT().
					Query(gomock.Any(), gomock.Eq(tr.TransactionID)).
					Times(1).
					Return(tr, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "ErrTransactionNotFound",
			buildStubs: func(ts *MockService) {
				ts.EXPECT().
					Query(gomock.Any(), gomock.Eq(tr.TransactionID)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransactionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      web.Error(domain.ErrTransactionNotFound),
		},
	}

	handle := func(h *Handler) gin.HandlerFunc { return h.Get }
	run(t, testCases, http.MethodGet, "/transactions/"+tr.TransactionID, "/transactions/:transaction_id", handle, tr)

	t.Run("InvalidTransactionID", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ts := NewMockService(ctrl)
		ts.EXPECT().Query(gomock.Any(), gomock.Any()).Times(0)

		server := gin.New()
		server.GET("/transactions/:transaction_id", NewHandler(ts).Get)

		req, err := http.NewRequest(http.MethodGet, "/transactions/short", nil)
		if err != nil {
			t.Fatalf("Creating request error: %v", err)
		}

		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, req)

		if got := recorder.Code; got != http.StatusBadRequest {
			t.Errorf("Status code: got %v, want %v", got, http.StatusBadRequest)
		}
	})
}
