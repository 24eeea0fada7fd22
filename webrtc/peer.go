// Package webrtc keeps one optional data channel per client. Match updates
// prefer it over the websocket once it is open.
package webrtc

import (
	"errors"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/webrtc/v3"

	"snake-duel/models"
)

var ErrChannelNotOpen = errors.New("data channel not open")

const dataChannelLabel = "game"

type PeerConnection struct {
	PeerConnection *webrtc.PeerConnection
	DataChannel    *webrtc.DataChannel
	Client         *models.Client
}

type Manager struct {
	api        *webrtc.API
	iceServers []string
	log        logging.LeveledLogger
	peers      map[string]*PeerConnection
	mutex      sync.RWMutex
}

// NewManager routes pion's internal logging through lf.
func NewManager(iceServers []string, lf logging.LoggerFactory) *Manager {
	se := webrtc.SettingEngine{LoggerFactory: lf}
	return &Manager{
		api:        webrtc.NewAPI(webrtc.WithSettingEngine(se)),
		iceServers: iceServers,
		log:        lf.NewLogger("webrtc"),
		peers:      make(map[string]*PeerConnection),
	}
}

// CreatePeerConnection opens a peer for client, replacing any previous one.
// onMessage receives every inbound data channel frame.
func (m *Manager) CreatePeerConnection(client *models.Client, onMessage func([]byte)) (*PeerConnection, error) {
	peerConnection, err := m.api.NewPeerConnection(m.iceConfiguration())
	if err != nil {
		return nil, err
	}

	dataChannel, err := peerConnection.CreateDataChannel(dataChannelLabel, nil)
	if err != nil {
		peerConnection.Close()
		return nil, err
	}

	peer := &PeerConnection{
		PeerConnection: peerConnection,
		DataChannel:    dataChannel,
		Client:         client,
	}

	peerConnection.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		m.log.Debugf("ICE state for %s: %s", client.Username, state)
		if state == webrtc.ICEConnectionStateDisconnected || state == webrtc.ICEConnectionStateFailed {
			m.removeIfCurrent(peer)
		}
	})
	dataChannel.OnOpen(func() {
		m.log.Infof("data channel open for %s", client.Username)
	})
	dataChannel.OnMessage(func(msg webrtc.DataChannelMessage) {
		onMessage(msg.Data)
	})
	dataChannel.OnClose(func() {
		m.log.Infof("data channel closed for %s", client.Username)
		m.removeIfCurrent(peer)
	})
	dataChannel.OnError(func(err error) {
		m.log.Warnf("data channel error for %s: %v", client.Username, err)
	})

	m.RemovePeer(client.ID)
	m.mutex.Lock()
	m.peers[client.ID] = peer
	m.mutex.Unlock()

	return peer, nil
}

// Answer applies the remote offer and returns the local answer once ICE
// gathering is complete.
func (p *PeerConnection) Answer(offerSDP string) (webrtc.SessionDescription, error) {
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}
	if err := p.PeerConnection.SetRemoteDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	answer, err := p.PeerConnection.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	gatherComplete := webrtc.GatheringCompletePromise(p.PeerConnection)
	if err := p.PeerConnection.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	// No trickle ICE: the answer carries every gathered candidate.
	<-gatherComplete
	return *p.PeerConnection.LocalDescription(), nil
}

func (m *Manager) GetPeer(clientID string) (*PeerConnection, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	peer, exists := m.peers[clientID]
	return peer, exists
}

func (m *Manager) RemovePeer(clientID string) {
	m.mutex.Lock()
	peer, exists := m.peers[clientID]
	delete(m.peers, clientID)
	m.mutex.Unlock()

	if exists {
		m.closePeer(peer)
	}
}

// removeIfCurrent drops peer unless it has already been replaced.
func (m *Manager) removeIfCurrent(peer *PeerConnection) {
	m.mutex.Lock()
	current, exists := m.peers[peer.Client.ID]
	if exists && current == peer {
		delete(m.peers, peer.Client.ID)
	}
	m.mutex.Unlock()

	m.closePeer(peer)
}

func (m *Manager) closePeer(peer *PeerConnection) {
	if peer.PeerConnection == nil {
		return
	}
	if err := peer.PeerConnection.Close(); err != nil {
		m.log.Debugf("close peer for %s: %v", peer.Client.ID, err)
	}
}

// IsOpen reports whether the client's data channel can carry frames.
func (m *Manager) IsOpen(clientID string) bool {
	peer, exists := m.GetPeer(clientID)
	return exists && peer.DataChannel != nil && peer.DataChannel.ReadyState() == webrtc.DataChannelStateOpen
}

// SendFrame writes an encoded frame, as binary or text.
func (m *Manager) SendFrame(clientID string, frame []byte, binary bool) error {
	if !m.IsOpen(clientID) {
		return ErrChannelNotOpen
	}
	peer, _ := m.GetPeer(clientID)
	if binary {
		return peer.DataChannel.Send(frame)
	}
	return peer.DataChannel.SendText(string(frame))
}

func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.peers)
}

func (m *Manager) iceConfiguration() webrtc.Configuration {
	servers := make([]webrtc.ICEServer, 0, len(m.iceServers))
	for _, url := range m.iceServers {
		servers = append(servers, webrtc.ICEServer{URLs: []string{url}})
	}
	return webrtc.Configuration{
		ICEServers:         servers,
		ICETransportPolicy: webrtc.ICETransportPolicyAll,
	}
}
