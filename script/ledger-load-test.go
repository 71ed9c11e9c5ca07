package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MutationRequest is the deposit and withdraw payload
type MutationRequest struct {
	AccountNumber uint64 `json:"acc_no"`
	Amount        string `json:"amount"`
	Reference     string `json:"reference,omitempty"`
}

// ReconcileResponse is the subset of GET /api/reconcile/:acc_no the test checks
type ReconcileResponse struct {
	Balance       string `json:"balance"`
	LedgerBalance string `json:"ledger_balance"`
	EntryCount    int64  `json:"entry_count"`
	Consistent    bool   `json:"consistent"`
}

// TestResult contains metrics for a single request
type TestResult struct {
	Scenario     string
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests int
	StatusCounts  map[int]int
	ScenarioStats map[string]int
	ErrorCounts   map[string]int
	ResponseTimes []time.Duration
	TotalTime     time.Duration
	Lock          sync.Mutex
}

// Scenario is one kind of ledger mutation the workers send
type Scenario struct {
	Name   string
	Path   string
	Amount string
}

func main() {
	concurrency := flag.Int("c", 20, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 500, "Total number of requests to make")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	opening := flag.String("open", "100.00", "Opening balance of the test account")
	accountNumber := flag.Uint64("acc", 0, "Existing account to use; a new one is created when 0")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	if *accountNumber == 0 {
		number, err := createAccount(client, *baseURL, *opening)
		if err != nil {
			fmt.Println("Failed to create test account:", err)
			os.Exit(1)
		}
		*accountNumber = number
	}

	// withdrawals outnumber deposits so the account runs dry and overdraft refusals get exercised
	scenarios := []Scenario{
		{"Deposit Small", "/api/deposit", "5.00"},
		{"Deposit Large", "/api/deposit", "25.50"},
		{"Withdraw Small", "/api/withdraw", "10.00"},
		{"Withdraw Medium", "/api/withdraw", "30.00"},
		{"Withdraw Large", "/api/withdraw", "75.25"},
	}

	fmt.Printf("Racing %d requests on account %d with %d goroutines\n", *totalRequests, *accountNumber, *concurrency)

	stats := &TestStats{
		TotalRequests: *totalRequests,
		StatusCounts:  make(map[int]int),
		ScenarioStats: make(map[string]int),
		ErrorCounts:   make(map[string]int),
		ResponseTimes: make([]time.Duration, 0, *totalRequests),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(client, *baseURL, *accountNumber, *delayMs, scenarios, jobs, results)
		}()
	}

	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	var collector sync.WaitGroup
	collector.Add(1)
	go func() {
		defer collector.Done()
		for result := range results {
			stats.Lock.Lock()
			stats.StatusCounts[result.StatusCode]++
			stats.ScenarioStats[result.Scenario]++
			if result.Error != nil {
				stats.ErrorCounts[result.Error.Error()]++
			}
			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	wg.Wait()
	close(results)
	collector.Wait()
	stats.TotalTime = time.Since(startTime)

	printResults(stats)

	reconciliation, err := reconcile(client, *baseURL, *accountNumber)
	if err != nil {
		fmt.Println("Reconcile failed:", err)
		os.Exit(1)
	}

	fmt.Println("\n----------------- RECONCILIATION -----------------")
	fmt.Printf("Stored balance:      %s\n", reconciliation.Balance)
	fmt.Printf("Ledger balance:      %s\n", reconciliation.LedgerBalance)
	fmt.Printf("Ledger entries:      %d\n", reconciliation.EntryCount)
	if !reconciliation.Consistent {
		fmt.Println("❌ Stored balance drifted from the ledger")
		os.Exit(1)
	}
	fmt.Println("✅ Stored balance matches the ledger")
}

func worker(client *http.Client, baseURL string, accountNumber uint64, delayMs int,
	scenarios []Scenario, jobs <-chan int, results chan<- TestResult) {

	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		scenario := scenarios[rand.Intn(len(scenarios))]
		body, err := json.Marshal(MutationRequest{
			AccountNumber: accountNumber,
			Amount:        scenario.Amount,
			Reference:     uuid.NewString(),
		})
		if err != nil {
			results <- TestResult{Scenario: scenario.Name, Error: err}
			continue
		}

		startTime := time.Now()
		resp, err := client.Post(baseURL+scenario.Path, "application/json", bytes.NewReader(body))
		result := TestResult{Scenario: scenario.Name, ResponseTime: time.Since(startTime)}

		if err != nil {
			result.Error = err
		} else {
			result.StatusCode = resp.StatusCode
			// 400 is an expected overdraft refusal
			if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
				result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
			}
			resp.Body.Close()
		}

		results <- result
	}
}

func createAccount(client *http.Client, baseURL, opening string) (uint64, error) {
	body, _ := json.Marshal(map[string]string{"name": "Load Test", "balance": opening})
	resp, err := client.Post(baseURL+"/api/create_account", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	var created struct {
		AccountNumber uint64 `json:"account_number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, err
	}
	return created.AccountNumber, nil
}

func reconcile(client *http.Client, baseURL string, accountNumber uint64) (*ReconcileResponse, error) {
	resp, err := client.Get(fmt.Sprintf("%s/api/reconcile/%d", baseURL, accountNumber))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	var out ReconcileResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func printResults(stats *TestStats) {
	tps := float64(stats.TotalRequests) / stats.TotalTime.Seconds()

	var p50, p90, p99, maxTime time.Duration
	if n := len(stats.ResponseTimes); n > 0 {
		sorted := slices.Clone(stats.ResponseTimes)
		slices.Sort(sorted)
		p50 = sorted[n*50/100]
		p90 = sorted[n*90/100]
		p99 = sorted[n*99/100]
		maxTime = sorted[n-1]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f requests/second\n", tps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P99 Response:        %v\n", p99)
	fmt.Printf("Maximum Response:    %v\n", maxTime)

	fmt.Println("\n----------------- STATUS CODES -----------------")
	for code, count := range stats.StatusCounts {
		fmt.Printf("%-5d: %d\n", code, count)
	}

	fmt.Println("\n----------------- SCENARIO DISTRIBUTION -----------------")
	for scenario, count := range stats.ScenarioStats {
		fmt.Printf("%-16s: %d requests\n", scenario, count)
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d\n", errMsg, count)
		}
	}
}
