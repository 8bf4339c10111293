package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultWorkers  = 10
	defaultDuration = 30 * time.Second
	// share of deliveries that replay an already sent transaction id
	defaultRedeliveryRate = 0.2
)

var currencies = []string{"INR", "USD", "EUR"}

type options struct {
	baseURL        string
	workers        int
	duration       time.Duration
	redeliveryRate float64
}

type Transaction struct {
	TransactionID      string `json:"transaction_id"`
	SourceAccount      string `json:"source_account"`
	DestinationAccount string `json:"destination_account"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency"`
}

type sentIDs struct {
	sync.Mutex
	ids []string
}

func (s *sentIDs) add(id string) {
	s.Lock()
	defer s.Unlock()
	s.ids = append(s.ids, id)
}

func (s *sentIDs) random() (string, bool) {
	s.Lock()
	defer s.Unlock()
	if len(s.ids) == 0 {
		return "", false
	}
	return s.ids[rand.Intn(len(s.ids))], true
}

func main() {
	opts := options{}
	rootCmd := &cobra.Command{
		Use:   "txwebhook-load",
		Short: "Replay transaction webhooks, including duplicates, against a running service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.baseURL, "url", "u", defaultBaseURL(), "Service base URL")
	rootCmd.Flags().IntVarP(&opts.workers, "workers", "w", defaultWorkers, "Concurrent senders")
	rootCmd.Flags().DurationVarP(&opts.duration, "duration", "d", defaultDuration, "How long to send for")
	rootCmd.Flags().Float64VarP(&opts.redeliveryRate, "redelivery-rate", "r", defaultRedeliveryRate, "Share of deliveries reusing a sent transaction id")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultBaseURL keeps the API_URL / API_PORT environment of the compose setup working.
func defaultBaseURL() string {
	host, ok := os.LookupEnv("API_URL")
	if !ok {
		host = "localhost"
	}
	port, ok := os.LookupEnv("API_PORT")
	if !ok {
		port = "8080"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}

func run(opts options) error {
	if opts.workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	webhookURL := opts.baseURL + "/v1/webhooks/transactions"
	statsURL := opts.baseURL + "/v1/stats"

	var (
		wg                           sync.WaitGroup
		sent                         sentIDs
		accepted, duplicate, invalid atomic.Int64
	)
	wg.Add(opts.workers)
	for i := 0; i < opts.workers; i++ {
		go func() {
			defer wg.Done()
			start := time.Now()
			for time.Since(start) < opts.duration {
				transaction := createTransaction(&sent, opts.redeliveryRate)
				status, err := sendTransaction(webhookURL, transaction)
				if err != nil {
					fmt.Println("Error sending transaction:", err)
					continue
				}

				switch status {
				case http.StatusAccepted:
					accepted.Add(1)
					sent.add(transaction.TransactionID)
				case http.StatusOK:
					duplicate.Add(1)
				default:
					invalid.Add(1)
				}
				fmt.Printf("Transaction %s sent. Status code: %d\n", transaction.TransactionID, status)

				time.Sleep(time.Duration(rand.Intn(200)) * time.Millisecond)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				printStats(statsURL)
			}
		}
	}()

	wg.Wait()
	close(done)
	fmt.Printf("Accepted: %d, duplicates: %d, rejected: %d\n", accepted.Load(), duplicate.Load(), invalid.Load())
	printStats(statsURL)
	return nil
}

func sendTransaction(webhookURL string, transaction Transaction) (int, error) {
	data, err := json.Marshal(transaction)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewBuffer(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func createTransaction(sent *sentIDs, redeliveryRate float64) Transaction {
	transactionID := "txn_" + uuid.New().String()
	if rand.Float64() < redeliveryRate {
		if id, ok := sent.random(); ok {
			transactionID = id
		}
	}
	// a few malformed ids to exercise validation
	if rand.Float64() < 0.02 {
		transactionID = transactionID[:3]
	}

	return Transaction{
		TransactionID:      transactionID,
		SourceAccount:      "acc_user_" + uuid.New().String()[:8],
		DestinationAccount: "acc_merchant_" + uuid.New().String()[:8],
		Amount:             fmt.Sprintf("%.2f", rand.Float64()*1000+1),
		Currency:           currencies[rand.Intn(len(currencies))],
	}
}

func printStats(statsURL string) {
	resp, err := http.Get(statsURL)
	if err != nil {
		fmt.Println("Error getting stats:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Println("Wrong status code:", resp.StatusCode)
		return
	}

	var stats struct {
		Processing int64 `json:"processing"`
		Processed  int64 `json:"processed"`
		Failed     int64 `json:"failed"`
		Total      int64 `json:"total"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		fmt.Println("Error decoding stats:", err)
		return
	}

	fmt.Printf("Stats: processing=%d processed=%d failed=%d total=%d\n", stats.Processing, stats.Processed, stats.Failed, stats.Total)
}
