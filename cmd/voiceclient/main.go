// voiceclient sends a WAV file through the pipeline endpoint and prints
// the routing decision. Useful for poking a running service by hand.
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

type pipelineResponse struct {
	RequestID     string `json:"requestId"`
	PrivacyMode   bool   `json:"privacyMode"`
	Transcription struct {
		Text         string  `json:"text"`
		TextRedacted *string `json:"textRedacted"`
		Confidence   float64 `json:"confidence"`
	} `json:"transcription"`
	Intent struct {
		Intent             string            `json:"intent"`
		Confidence         float64           `json:"confidence"`
		Entities           map[string]string `json:"entities"`
		HandoffRecommended bool              `json:"handoffRecommended"`
		ResponseText       string            `json:"responseText"`
	} `json:"intent"`
	Audio         []byte `json:"audio"`
	AudioDegraded bool   `json:"audioDegraded"`
	DurationMS    int64  `json:"durationMs"`
}

func main() {
	audioFile := flag.String("audio", "testdata/sample-8khz.wav", "Path to WAV file (PCM)")
	serverURL := flag.String("server", "http://localhost:8000", "Voice console base URL")
	privacy := flag.Bool("privacy", true, "Enable privacy mode for the request")
	outFile := flag.String("out", "", "Write response audio to this file")
	flag.Parse()

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	// Read and validate WAV header
	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		log.Fatalf("Failed to read audio: %v", err)
	}
	payload := append(header, rest...)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	if err := writer.WriteField("privacy_mode", strconv.FormatBool(*privacy)); err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	start := time.Now()
	resp, err := client.Post(*serverURL+"/v1/pipeline/process", writer.FormDataContentType(), &body)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		log.Fatalf("Server returned %d: %s", resp.StatusCode, detail)
	}

	var result pipelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}

	log.Printf("requestId=%s roundTrip=%v pipeline=%dms", result.RequestID, time.Since(start), result.DurationMS)
	log.Printf("transcript: %q (confidence %.2f)", result.Transcription.Text, result.Transcription.Confidence)
	if result.Transcription.TextRedacted != nil {
		log.Printf("redacted:   %q", *result.Transcription.TextRedacted)
	}
	log.Printf("intent=%s confidence=%.2f handoff=%v", result.Intent.Intent, result.Intent.Confidence, result.Intent.HandoffRecommended)
	for category, value := range result.Intent.Entities {
		log.Printf("entity %s=%q", category, value)
	}
	log.Printf("response: %q", result.Intent.ResponseText)
	if result.AudioDegraded {
		log.Printf("warning: synthesis degraded, response audio is silent fallback")
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, result.Audio, 0o644); err != nil {
			log.Fatalf("Failed to write audio: %v", err)
		}
		log.Printf("wrote %d bytes of audio to %s", len(result.Audio), *outFile)
	}
}
