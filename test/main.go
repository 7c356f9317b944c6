package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

type participant struct {
	Email string `json:"email"`
}

type chatMessage struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type meetingRequest struct {
	MeetingID    string        `json:"meetingId"`
	Participants []participant `json:"participants"`
	ChatHistory  []chatMessage `json:"chatHistory"`
}

const StreamName = "MEETINGS"

func main() {
	meetingCount := flag.Int("count", 20, "Total number of meetings to submit")
	concurrency := flag.Int("concurrency", 5, "Number of concurrent workers")
	recipient := flag.String("recipient", "test@example.com", "Participant email address for the test")
	apiURL := flag.String("url", "http://localhost:3004/process-meeting", "URL of the meeting-notifier API")
	natsURL := flag.String("nats", "nats://localhost:4222", "URL of the NATS server")
	purgeStream := flag.Bool("purge", false, "If set, purge the MEETINGS stream before running the test")
	flag.Parse()

	if *purgeStream {
		purgeNatsStream(*natsURL)
	}

	runLoadTest(*meetingCount, *concurrency, *recipient, *apiURL)
}

func purgeNatsStream(natsURL string) {
	log.Printf("Connecting to NATS at %s to purge stream...", natsURL)
	nc, err := nats.Connect(natsURL)
	if err != nil {
		log.Fatalf("Error connecting to NATS: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("Error creating JetStream context: %v", err)
	}

	if err := js.PurgeStream(StreamName); err != nil {
		log.Fatalf("Failed to purge stream: %v", err)
	}
	log.Printf("Stream '%s' successfully purged.", StreamName)
}

func runLoadTest(meetingCount, concurrency int, recipient, apiURL string) {
	log.Printf("Starting load test: %d meetings with %d concurrent workers to %s", meetingCount, concurrency, apiURL)

	jobs := make(chan meetingRequest, meetingCount)
	results := make(chan bool, meetingCount)
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go worker(i+1, apiURL, jobs, results, &wg)
	}

	startTime := time.Now()
	for i := 0; i < meetingCount; i++ {
		jobs <- syntheticMeeting(i+1, recipient)
	}
	close(jobs)
	wg.Wait()
	close(results)

	duration := time.Since(startTime)
	successCount := 0
	for r := range results {
		if r {
			successCount++
		}
	}

	log.Println("----------- Load Test Complete -----------")
	log.Printf("Total Requests: %d", meetingCount)
	log.Printf("Successful:     %d", successCount)
	log.Printf("Failed:         %d", meetingCount-successCount)
	log.Printf("Duration:       %.2f minutes", duration.Minutes())
	log.Printf("RPS (Requests Per Second): %.2f", float64(meetingCount)/duration.Seconds())
	log.Println("-------------------------------------------")
}

func syntheticMeeting(n int, recipient string) meetingRequest {
	now := time.Now().UTC()
	return meetingRequest{
		MeetingID:    fmt.Sprintf("loadtest-%d-%d", now.Unix(), n),
		Participants: []participant{{Email: recipient}},
		ChatHistory: []chatMessage{
			{User: "Ana", Text: "Buenos días, repasemos los pendientes de la semana.", Timestamp: now.Format(time.RFC3339)},
			{User: "Luis", Text: fmt.Sprintf("Yo cierro el ticket %d antes del viernes.", n), Timestamp: now.Add(time.Minute).Format(time.RFC3339)},
			{User: "Ana", Text: "Perfecto, yo preparo la demo para el cliente.", Timestamp: now.Add(2 * time.Minute).Format(time.RFC3339)},
		},
	}
}

func worker(id int, apiURL string, jobs <-chan meetingRequest, results chan<- bool, wg *sync.WaitGroup) {
	defer wg.Done()
	// Summaries go through the model and SMTP synchronously.
	client := &http.Client{Timeout: 2 * time.Minute}
	for job := range jobs {
		body, err := sendRequestToAPI(client, apiURL, job)
		if err != nil {
			log.Printf("ERROR (Worker %d): %v", id, err)
			results <- false
		} else {
			log.Printf("OK (Worker %d): %s -> %s", id, job.MeetingID, body)
			results <- true
		}
	}
}

func sendRequestToAPI(client *http.Client, apiURL string, job meetingRequest) (string, error) {
	payloadBytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %s: %s", resp.Status, body)
	}
	return string(body), nil
}
